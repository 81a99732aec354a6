package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/brightpl/hourbill/internal/config"
	"github.com/brightpl/hourbill/internal/handlers"
	"github.com/brightpl/hourbill/internal/httpx"
	"github.com/brightpl/hourbill/internal/i18n"
	"github.com/brightpl/hourbill/internal/pdf"
	"github.com/brightpl/hourbill/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
}

// NewApp wires services and handlers and configures all routes.
func NewApp(db *gorm.DB, cfg *config.Config) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
	}

	invoiceSvc := services.NewInvoiceService(db)
	importSvc := services.NewImportService(db)
	renderer := pdf.NewRenderer(sellerInfo(cfg.Seller), cfg.Invoice.HeaderImage)

	ch := handlers.NewCompanyHandler(db)
	bh := handlers.NewBillableHandler(db, importSvc)
	ih := handlers.NewInvoiceHandler(db, invoiceSvc, renderer, cfg.Invoice.OutputDir,
		handlers.InvoiceDefaults{
			TaxRateBP:        cfg.Invoice.DefaultTaxRateBP,
			PaymentTermsDays: cfg.Invoice.PaymentTermsDays,
		})

	app.mux.HandleFunc("GET /healthz", app.health)
	app.mux.HandleFunc("GET /stats", ih.Stats)

	app.mux.HandleFunc("GET /companies", ch.List)
	app.mux.HandleFunc("POST /companies", ch.Create)
	app.mux.HandleFunc("GET /companies/{id}", ch.Get)
	app.mux.HandleFunc("PUT /companies/{id}", ch.Update)
	app.mux.HandleFunc("DELETE /companies/{id}", ch.Deactivate)

	app.mux.HandleFunc("GET /companies/{id}/billables", bh.List)
	app.mux.HandleFunc("POST /companies/{id}/billables", bh.Create)
	app.mux.HandleFunc("POST /companies/{id}/import", bh.Import)

	app.mux.HandleFunc("GET /invoices", ih.List)
	app.mux.HandleFunc("POST /invoices", ih.Create)
	app.mux.HandleFunc("GET /invoices/next-number", ih.NextNumber)
	app.mux.HandleFunc("GET /invoices/{id}", ih.Get)
	app.mux.HandleFunc("PATCH /invoices/{id}/status", ih.UpdateStatus)
	app.mux.HandleFunc("GET /invoices/{id}/pdf", ih.PDF)

	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withLanguage(a.mux).ServeHTTP(w, r)
}

// withLanguage puts the detected request language on the context; the PDF
// handler falls back to it when no explicit locale is requested.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sellerInfo(s config.SellerConfig) pdf.SellerInfo {
	return pdf.SellerInfo{
		Name:              s.Name,
		BusinessType:      s.BusinessType,
		Address:           s.Address,
		City:              s.City,
		NIP:               s.NIP,
		REGON:             s.REGON,
		Phone:             s.Phone,
		Email:             s.Email,
		BankName:          s.BankName,
		BankAccount:       s.BankAccount,
		HeaderTitle:       s.HeaderTitle,
		HeaderSubtitle:    s.HeaderSubtitle,
		HeaderDescription: s.HeaderDescription,
	}
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs every request with method, path, status and duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
