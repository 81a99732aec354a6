package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/brightpl/hourbill/internal/httpx"
	"github.com/brightpl/hourbill/internal/models"
	"github.com/brightpl/hourbill/internal/validation"
)

type CompanyHandler struct {
	db *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

type companyRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZipCode           string `json:"zip_code"`
	Country           string `json:"country"`
	TaxID             string `json:"tax_id"`
	ContactPerson     string `json:"contact_person"`
	DefaultHourlyRate *int64 `json:"default_hourly_rate,omitempty"`
	Currency          string `json:"currency"`
}

func (req *companyRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	if req.DefaultHourlyRate != nil {
		validation.NonNegativeInt("default_hourly_rate", *req.DefaultHourlyRate, v)
	}
	return v
}

func (req *companyRequest) apply(company *models.Company) {
	company.Name = req.Name
	company.Email = req.Email
	company.Phone = req.Phone
	company.Address = req.Address
	company.City = req.City
	company.State = req.State
	company.ZipCode = req.ZipCode
	company.Country = req.Country
	company.TaxID = req.TaxID
	company.ContactPerson = req.ContactPerson
	company.DefaultHourlyRate = req.DefaultHourlyRate
	if req.Currency != "" {
		company.Currency = req.Currency
	}
}

// List: GET /companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.db.Order("name")
	if r.URL.Query().Get("include_inactive") != "true" {
		dbq = dbq.Where("is_active = ?", true)
	}

	var companies []models.Company
	if err := dbq.Find(&companies).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_companies", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": companies, "total": len(companies)})
}

// Create: POST /companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	company := models.Company{IsActive: true}
	req.apply(&company)
	if err := h.db.Create(&company).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_company", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

// Get: GET /companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

// Update: PUT /companies/{id}
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	company, ok := h.load(w, r)
	if !ok {
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	req.apply(company)
	if err := h.db.Save(company).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_company", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

// Deactivate: DELETE /companies/{id}. Companies are never hard-deleted;
// invoices keep referencing them.
func (h *CompanyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	company, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.db.Model(company).Update("is_active", false).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_deactivate_company", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) load(w http.ResponseWriter, r *http.Request) (*models.Company, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_company_id", nil)
		return nil, false
	}

	var company models.Company
	if err := h.db.First(&company, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "company_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_company", nil)
		}
		return nil, false
	}
	return &company, true
}
