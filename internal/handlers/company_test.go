package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightpl/hourbill/internal/db"
	"github.com/brightpl/hourbill/internal/models"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func companyMux(conn *gorm.DB) *http.ServeMux {
	h := NewCompanyHandler(conn)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /companies", h.List)
	mux.HandleFunc("POST /companies", h.Create)
	mux.HandleFunc("GET /companies/{id}", h.Get)
	mux.HandleFunc("PUT /companies/{id}", h.Update)
	mux.HandleFunc("DELETE /companies/{id}", h.Deactivate)
	return mux
}

func TestCompanyCreateAndGet(t *testing.T) {
	conn := setupHandlerTestDB(t)
	mux := companyMux(conn)

	body := `{"name":"Acme Corp","email":"billing@acme.example","default_hourly_rate":5000}`
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Company
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 || created.Name != "Acme Corp" {
		t.Fatalf("unexpected company: %+v", created)
	}
	if created.DefaultHourlyRate == nil || *created.DefaultHourlyRate != 5000 {
		t.Fatalf("rate not persisted: %+v", created.DefaultHourlyRate)
	}

	resp = httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/companies/%d", created.ID), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCompanyCreateValidation(t *testing.T) {
	conn := setupHandlerTestDB(t)
	mux := companyMux(conn)

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(`{"name":""}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var errResp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error != "validation_failed" {
		t.Fatalf("unexpected error code %q", errResp.Error)
	}
	if errResp.Details["name"] != "required" || errResp.Details["email"] != "required" {
		t.Fatalf("unexpected violations: %v", errResp.Details)
	}
}

func TestCompanyGetNotFound(t *testing.T) {
	conn := setupHandlerTestDB(t)
	mux := companyMux(conn)

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/companies/999", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCompanyDeactivateHidesFromList(t *testing.T) {
	conn := setupHandlerTestDB(t)
	mux := companyMux(conn)

	company := models.Company{Name: "Acme", Email: "a@b.c", IsActive: true}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/companies/%d", company.ID), nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/companies", nil))
	var list struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("deactivated company still listed: %d", list.Total)
	}

	// Still visible when inactive companies are requested.
	resp = httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/companies?include_inactive=true", nil))
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 company with include_inactive, got %d", list.Total)
	}
}
