package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/brightpl/hourbill/internal/logger"
	"github.com/brightpl/hourbill/internal/models"
)

var (
	// ErrCompanyNotFound means the company does not exist or is deactivated.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrNothingToBill means the company has no unbilled items.
	ErrNothingToBill = errors.New("no unbilled items found for this company")
	// ErrDuplicateNumber means the invoice number is already taken; the caller
	// should regenerate a number and retry.
	ErrDuplicateNumber = errors.New("invoice number already exists")
)

// numberPrefixFormat is the date scope of generated numbers: INV-YYYYMMDD.
const numberPrefixFormat = "INV-20060102"

// InvoiceService generates invoice numbers and turns unbilled items into
// priced invoices.
type InvoiceService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, log: logger.WithComponent("invoices")}
}

// NextInvoiceNumber scans existing numbers under today's INV-YYYYMMDD prefix
// and returns the next free sequence, zero-padded to three digits. Numbers
// with a non-numeric suffix under the prefix are ignored. The database unique
// constraint remains the safety net against concurrent callers.
func (s *InvoiceService) NextInvoiceNumber(now time.Time) (string, error) {
	prefix := now.Format(numberPrefixFormat)

	var existing []string
	err := s.db.Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &existing).Error
	if err != nil {
		return "", fmt.Errorf("scan invoice numbers: %w", err)
	}

	maxSeq := 0
	for _, number := range existing {
		idx := strings.LastIndex(number, "-")
		if idx < 0 {
			continue
		}
		seq, err := strconv.Atoi(number[idx+1:])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s-%03d", prefix, maxSeq+1), nil
}

// FallbackInvoiceNumber builds a timestamp-derived number (INV-YYYYMMDDHHMMSS)
// for when the scan-based path is unavailable. It trades uniqueness by
// construction for uniqueness by entropy.
func FallbackInvoiceNumber(now time.Time) string {
	return "INV-" + now.Format("20060102150405")
}

// GenerateInvoiceNumber returns the next scan-based number, falling back to a
// timestamp-derived one if the lookup fails. It never blocks the caller on a
// store error.
func (s *InvoiceService) GenerateInvoiceNumber(now time.Time) string {
	number, err := s.NextInvoiceNumber(now)
	if err != nil {
		s.log.Warn().Err(err).Msg("invoice number scan failed, using timestamp fallback")
		return FallbackInvoiceNumber(now)
	}
	return number
}

// CreateInvoiceParams carries everything needed to bill a company's open items.
type CreateInvoiceParams struct {
	CompanyID uint
	// Number is optional: empty means generate a default one.
	Number    string
	IssueDate time.Time
	DueDate   *time.Time
	// TaxRateBP is in basis points (2300 = 23.00%).
	TaxRateBP int64
	Notes     string
	Terms     string
}

// CreateInvoice selects all unbilled items of the company, prices them into
// line items, computes subtotal/tax/total, and marks the items invoiced - all
// in a single transaction. On any failure nothing is persisted and no item is
// flagged.
func (s *InvoiceService) CreateInvoice(params CreateInvoiceParams) (*models.Invoice, error) {
	if params.TaxRateBP < 0 || params.TaxRateBP >= 1_000_000 {
		return nil, fmt.Errorf("tax rate %d basis points out of range", params.TaxRateBP)
	}

	var company models.Company
	if err := s.db.Where("id = ? AND is_active = ?", params.CompanyID, true).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("load company: %w", err)
	}

	var items []models.BillableItem
	if err := s.db.Where("company_id = ? AND is_invoiced = ?", params.CompanyID, false).
		Order("date_worked, id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load unbilled items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNothingToBill
	}

	issueDate := params.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	// The number's date scope follows the issue date so backdated invoices
	// number under the day they are issued for.
	number := params.Number
	if number == "" {
		number = s.GenerateInvoiceNumber(issueDate)
	}

	invoice := models.Invoice{
		CompanyID: params.CompanyID,
		Number:    number,
		IssueDate: issueDate,
		DueDate:   params.DueDate,
		Status:    models.InvoiceStatusDraft,
		TaxRate:   params.TaxRateBP,
		Notes:     params.Notes,
		Terms:     params.Terms,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateNumber
			}
			return fmt.Errorf("create invoice: %w", err)
		}

		for i := range items {
			item := &items[i]
			unitPrice := item.EffectiveRate(&company)

			if item.TotalAmount == 0 {
				item.TotalAmount = models.AmountForHours(item.Hours, unitPrice)
			}

			line := models.InvoiceItem{
				InvoiceID:    invoice.ID,
				Description:  item.Description,
				Quantity:     item.Hours,
				UnitPrice:    unitPrice,
				Project:      item.Project,
				TaskCategory: item.TaskCategory,
				LineOrder:    i,
			}
			line.CalculateTotal()
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("create invoice item: %w", err)
			}
			invoice.Items = append(invoice.Items, line)

			item.IsInvoiced = true
			item.InvoiceID = &invoice.ID
			if err := tx.Save(item).Error; err != nil {
				return fmt.Errorf("mark item invoiced: %w", err)
			}
		}

		invoice.CalculateTotals()
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]any{
				"subtotal":     invoice.Subtotal,
				"tax_amount":   invoice.TaxAmount,
				"total_amount": invoice.TotalAmount,
			}).Error; err != nil {
			return fmt.Errorf("update invoice totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Company = &company
	return &invoice, nil
}

// UnbilledItems returns the company's not-yet-invoiced items in billing order.
func (s *InvoiceService) UnbilledItems(companyID uint) ([]models.BillableItem, error) {
	var items []models.BillableItem
	err := s.db.Where("company_id = ? AND is_invoiced = ?", companyID, false).
		Order("date_worked, id").
		Find(&items).Error
	return items, err
}

// GetRevenue sums the totals of paid invoices, in cents.
func (s *InvoiceService) GetRevenue() (int64, error) {
	var invoices []models.Invoice
	err := s.db.Where("status = ?", models.InvoiceStatusPaid).Find(&invoices).Error
	if err != nil {
		return 0, err
	}

	var total int64
	for _, inv := range invoices {
		total += inv.TotalAmount
	}
	return total, nil
}

// isUniqueViolation matches the unique-constraint errors of the supported
// drivers (sqlite and postgres phrase them differently).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
