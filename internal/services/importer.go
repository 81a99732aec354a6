package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	enc "github.com/brightpl/hourbill/internal/encoding"
	"github.com/brightpl/hourbill/internal/models"
)

// Required columns of an import file. Optional columns: project,
// task_category, hourly_rate (dollars, "$" and thousands separators allowed).
var requiredColumns = []string{"description", "date_worked", "hours"}

// dateLayouts accepted for the date_worked column.
var dateLayouts = []string{"2006-01-02", "02.01.2006", "01/02/2006"}

// ImportResult reports the outcome of one file import.
type ImportResult struct {
	ImportedCount int      `json:"imported_count"`
	TotalRows     int      `json:"total_rows"`
	Errors        []string `json:"errors,omitempty"`
	FileName      string   `json:"file_name"`
}

// ImportService loads billable hours from uploaded CSV files.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportCSV parses the reader as a headered CSV of billable hours for the
// given company. Rows that fail validation are reported in the result and
// skipped; valid rows commit together. Whole-file problems (bad header,
// unreadable content) abort with nothing persisted.
func (s *ImportService) ImportCSV(r io.Reader, companyID uint, fileName string) (*ImportResult, error) {
	var company models.Company
	if err := s.db.Where("id = ? AND is_active = ?", companyID, true).
		First(&company).Error; err != nil {
		return nil, ErrCompanyNotFound
	}

	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s is empty", fileName)
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		TotalRows: len(rows) - 1,
		FileName:  fileName,
	}
	importDate := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows[1:] {
			item, rowErr := parseRow(row, cols, &company)
			if rowErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, rowErr))
				continue
			}
			item.CompanyID = companyID
			item.ImportSource = fileName
			item.ImportDate = &importDate
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("save row %d: %w", i+2, err)
			}
			result.ImportedCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// headerIndex maps lowercased column names to positions and checks required
// columns are present.
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int, company *models.Company) (*models.BillableItem, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	description := field("description")
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}

	dateWorked, err := parseDate(field("date_worked"))
	if err != nil {
		return nil, err
	}

	hours, err := strconv.ParseFloat(field("hours"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid hours value: %q", field("hours"))
	}
	if hours <= 0 {
		return nil, fmt.Errorf("hours must be positive")
	}

	rate, err := parseRateCents(field("hourly_rate"))
	if err != nil {
		return nil, err
	}

	item := &models.BillableItem{
		Description:  description,
		Project:      field("project"),
		TaskCategory: field("task_category"),
		DateWorked:   dateWorked,
		Hours:        hours,
		HourlyRate:   rate,
	}
	item.UpdateTotalAmount(company)
	return item, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", value)
}

// parseRateCents converts a rate expressed in major units ("75", "$75.50",
// "1,200") to cents. Empty input means no item-level rate.
func parseRateCents(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hourly rate: %q", value)
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents < 0 {
		return nil, fmt.Errorf("hourly rate must not be negative")
	}
	return &cents, nil
}
