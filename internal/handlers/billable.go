package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/brightpl/hourbill/internal/httpx"
	"github.com/brightpl/hourbill/internal/models"
	"github.com/brightpl/hourbill/internal/services"
	"github.com/brightpl/hourbill/internal/validation"
)

// maxImportSize caps uploaded CSV files at 10 MB.
const maxImportSize = 10 << 20

type BillableHandler struct {
	db       *gorm.DB
	importer *services.ImportService
}

func NewBillableHandler(db *gorm.DB, importer *services.ImportService) *BillableHandler {
	return &BillableHandler{db: db, importer: importer}
}

type billableRequest struct {
	Description  string  `json:"description"`
	Project      string  `json:"project"`
	TaskCategory string  `json:"task_category"`
	DateWorked   string  `json:"date_worked"`
	Hours        float64 `json:"hours"`
	HourlyRate   *int64  `json:"hourly_rate,omitempty"`
}

// List: GET /companies/{id}/billables. The invoiced query parameter filters
// by billing state; default is everything.
func (h *BillableHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := pathID(w, r)
	if !ok {
		return
	}

	dbq := h.db.Where("company_id = ?", companyID)
	switch r.URL.Query().Get("invoiced") {
	case "true":
		dbq = dbq.Where("is_invoiced = ?", true)
	case "false":
		dbq = dbq.Where("is_invoiced = ?", false)
	}

	var items []models.BillableItem
	if err := dbq.Order("date_worked, id").Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_billables", nil)
		return
	}

	var totalHours float64
	var totalAmount int64
	for _, item := range items {
		totalHours += item.Hours
		totalAmount += item.TotalAmount
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":        items,
		"total":        len(items),
		"total_hours":  totalHours,
		"total_amount": totalAmount,
	})
}

// Create: POST /companies/{id}/billables
func (h *BillableHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := pathID(w, r)
	if !ok {
		return
	}

	var company models.Company
	if err := h.db.Where("id = ? AND is_active = ?", companyID, true).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "company_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_company", nil)
		}
		return
	}

	var req billableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("description", req.Description, v)
	validation.Required("date_worked", req.DateWorked, v)
	// Hours column is decimal(5,2).
	validation.RangeFloat("hours", req.Hours, 0, 999.99, v)
	validation.PositiveFloat("hours", req.Hours, v)
	if req.HourlyRate != nil {
		validation.NonNegativeInt("hourly_rate", *req.HourlyRate, v)
	}
	dateWorked, err := time.Parse("2006-01-02", req.DateWorked)
	if err != nil && req.DateWorked != "" {
		v["date_worked"] = "invalid_date"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	item := models.BillableItem{
		CompanyID:    company.ID,
		Description:  req.Description,
		Project:      req.Project,
		TaskCategory: req.TaskCategory,
		DateWorked:   dateWorked,
		Hours:        req.Hours,
		HourlyRate:   req.HourlyRate,
	}
	item.UpdateTotalAmount(&company)

	if err := h.db.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_billable", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// Import: POST /companies/{id}/import - multipart upload of a CSV of hours.
func (h *BillableHandler) Import(w http.ResponseWriter, r *http.Request) {
	companyID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart_form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_field_required", nil)
		return
	}
	defer file.Close()

	result, err := h.importer.ImportCSV(file, companyID, header.Filename)
	if err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "company_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "import_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
