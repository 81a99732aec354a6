package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/brightpl/hourbill/internal/httpx"
	"github.com/brightpl/hourbill/internal/i18n"
	"github.com/brightpl/hourbill/internal/models"
	"github.com/brightpl/hourbill/internal/pdf"
	"github.com/brightpl/hourbill/internal/services"
)

// InvoiceDefaults are applied when a create request omits the field.
type InvoiceDefaults struct {
	// TaxRateBP in basis points.
	TaxRateBP int64
	// PaymentTermsDays sets the due date relative to the issue date.
	PaymentTermsDays int
}

type InvoiceHandler struct {
	db       *gorm.DB
	svc      *services.InvoiceService
	renderer *pdf.Renderer
	// outputDir is where generated PDFs are archived.
	outputDir string
	defaults  InvoiceDefaults
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, renderer *pdf.Renderer, outputDir string, defaults InvoiceDefaults) *InvoiceHandler {
	return &InvoiceHandler{db: db, svc: svc, renderer: renderer, outputDir: outputDir, defaults: defaults}
}

type createInvoiceRequest struct {
	CompanyID uint   `json:"company_id"`
	Number    string `json:"number"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
	// TaxRateBP nil means use the configured default.
	TaxRateBP *int64 `json:"tax_rate_bp"`
	Notes     string `json:"notes"`
	Terms     string `json:"terms"`
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}

	dbq := h.db.Model(&models.Invoice{})
	if v := r.URL.Query().Get("company_id"); v != "" {
		dbq = dbq.Where("company_id = ?", v)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		dbq = dbq.Where("status = ?", v)
	}

	var total int64
	dbq.Count(&total)

	var invoices []models.Invoice
	if err := dbq.Preload("Company").Order("issue_date DESC, id DESC").
		Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": invoices, "total": total, "limit": limit, "offset": offset,
	})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Create: POST /invoices - bill a company's unbilled items.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.CompanyID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
			map[string]string{"company_id": "required"})
		return
	}

	taxRate := h.defaults.TaxRateBP
	if req.TaxRateBP != nil {
		taxRate = *req.TaxRateBP
	}
	params := services.CreateInvoiceParams{
		CompanyID: req.CompanyID,
		Number:    req.Number,
		TaxRateBP: taxRate,
		Notes:     req.Notes,
		Terms:     req.Terms,
	}
	if req.IssueDate != "" {
		issue, err := time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
				map[string]string{"issue_date": "invalid_date"})
			return
		}
		params.IssueDate = issue
	}
	switch {
	case req.DueDate != "":
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
				map[string]string{"due_date": "invalid_date"})
			return
		}
		params.DueDate = &due
	case h.defaults.PaymentTermsDays > 0:
		issue := params.IssueDate
		if issue.IsZero() {
			issue = time.Now()
		}
		due := issue.AddDate(0, 0, h.defaults.PaymentTermsDays)
		params.DueDate = &due
	}

	invoice, err := h.svc.CreateInvoice(params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCompanyNotFound):
			httpx.JSONError(w, http.StatusNotFound, "company_not_found", nil)
		case errors.Is(err, services.ErrNothingToBill):
			httpx.JSONError(w, http.StatusUnprocessableEntity, "nothing_to_bill", nil)
		case errors.Is(err, services.ErrDuplicateNumber):
			httpx.JSONError(w, http.StatusConflict, "duplicate_invoice_number", nil)
		default:
			log.Error().Err(err).Uint("company_id", req.CompanyID).Msg("create invoice failed")
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// NextNumber: GET /invoices/next-number - preview without reserving.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.NextInvoiceNumber(time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_generate_number", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

// UpdateStatus: PATCH /invoices/{id}/status
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	invoice, ok := h.load(w, r)
	if !ok {
		return
	}

	var req struct {
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	status := models.InvoiceStatus(req.Status)
	switch status {
	case models.InvoiceStatusDraft, models.InvoiceStatusSent,
		models.InvoiceStatusPaid, models.InvoiceStatusCancelled:
	default:
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
			map[string]string{"status": "unknown_status"})
		return
	}

	updates := map[string]any{"status": status}
	if status == models.InvoiceStatusPaid {
		now := time.Now()
		updates["paid_date"] = &now
		if req.PaymentMethod != "" {
			updates["payment_method"] = req.PaymentMethod
		}
	}
	if err := h.db.Model(invoice).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Stats: GET /stats - paid revenue, plus the unbilled backlog of one company
// when company_id is given.
func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.svc.GetRevenue()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_compute_stats", nil)
		return
	}
	payload := map[string]any{"revenue": revenue}

	if v := r.URL.Query().Get("company_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_company_id", nil)
			return
		}
		items, err := h.svc.UnbilledItems(uint(id))
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_compute_stats", nil)
			return
		}
		var hours float64
		var amount int64
		for _, item := range items {
			hours += item.Hours
			amount += item.TotalAmount
		}
		payload["unbilled_count"] = len(items)
		payload["unbilled_hours"] = hours
		payload["unbilled_amount"] = amount
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// PDF: GET /invoices/{id}/pdf?locale=pl|en - renders the document, archives a
// copy under the output dir, and streams it back as an attachment. Locale
// defaults to the request language set by the detection middleware.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	invoice, ok := h.load(w, r)
	if !ok {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = i18n.LangFromContext(r.Context())
	}

	doc := pdf.Document{
		Invoice: invoice,
		Company: invoice.Company,
		Items:   invoice.Items,
	}
	data, err := h.renderer.Render(doc, locale)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "render_failed", err.Error())
		return
	}

	// Archiving is best effort; the response proceeds regardless.
	path := filepath.Join(h.outputDir, fmt.Sprintf("%s_%s.pdf", invoice.Number, locale))
	if err := os.MkdirAll(h.outputDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", h.outputDir).Msg("creating pdf output dir failed")
	} else if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("archiving invoice pdf failed")
	} else if err := h.db.Model(invoice).Update("pdf_path", path).Error; err != nil {
		log.Warn().Err(err).Msg("recording pdf path failed")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_invoice_id", nil)
		return nil, false
	}

	var invoice models.Invoice
	err = h.db.Preload("Company").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_order") }).
		First(&invoice, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		}
		return nil, false
	}
	return &invoice, true
}
