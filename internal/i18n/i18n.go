// Package i18n holds the locale label tables used by the document renderer
// and a small Accept-Language detector for the HTTP surface.
package i18n

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Locale selects a document template: "en" (generic/English) or "pl" (Faktura).
const (
	LocaleEnglish = "en"
	LocalePolish  = "pl"
)

type langKey struct{}

// WithLang returns a context carrying the given language code.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the language from context, defaulting to English.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return LocaleEnglish
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(code, "-;"); i >= 0 {
			code = code[:i]
		}
		switch code {
		case "pl":
			return LocalePolish
		case "en":
			return LocaleEnglish
		}
	}
	return LocaleEnglish
}

var translations = map[string]map[string]string{
	LocaleEnglish: {
		"invoice_title":  "INVOICE",
		"invoice_number": "Invoice Number:",
		"issue_date":     "Invoice Date:",
		"due_date":       "Due Date:",
		"status":         "Status:",
		"bill_to":        "Bill To:",
		"items_header":   "Invoice Items:",
		"description":    "Description",
		"quantity":       "Quantity",
		"rate":           "Rate",
		"amount":         "Amount",
		"subtotal":       "Subtotal:",
		"tax":            "Tax",
		"total":          "Total:",
		"notes":          "Notes:",
		"terms":          "Terms:",
		"generated_on":   "Generated on",
		"not_specified":  "N/A",
	},
	LocalePolish: {
		"invoice_title":       "FAKTURA",
		"invoice_number":      "Nr faktury:",
		"issue_date":          "Data wystawienia:",
		"sale_date":           "Data sprzedaży:",
		"payment_date":        "Termin płatności:",
		"payment_method":      "Sposób zapłaty:",
		"seller":              "Sprzedawca:",
		"buyer":               "Nabywca:",
		"items_header":        "POZYCJE FAKTURY:",
		"item_no":             "Lp.",
		"description":         "Nazwa towaru/usługi",
		"quantity":            "Ilość",
		"unit":                "J.m.",
		"net_price":           "Cena netto",
		"vat_rate":            "VAT %",
		"vat_amount":          "Kwota VAT",
		"gross_amount":        "Wartość brutto",
		"total":               "RAZEM:",
		"summary":             "PODSUMOWANIE:",
		"net_value":           "Wartość netto:",
		"vat_value":           "VAT:",
		"to_pay":              "Do zapłaty:",
		"notes":               "Uwagi:",
		"signature_issuer":    "Osoba upoważniona do wystawienia faktury VAT",
		"signature_recipient": "Faktura bez podpisu odbiorcy",
		"unit_hour":           "godz.",
		"unit_piece":          "szt.",
		"generated_on":        "Faktura wygenerowana:",
		"nip":                 "NIP:",
		"phone":               "Tel:",
		"email":               "Email:",
		"bank_account":        "Nr rachunku:",
		"not_specified":       "Nie określono",
		"not_provided":        "Nie podano",
	},
}

// T returns the translation for code in lang, falling back to English, then to
// the code itself for unknown entries.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[LocaleEnglish][code]; ok {
		return s
	}
	return code
}

var polishMonths = [...]string{
	"stycznia", "lutego", "marca", "kwietnia", "maja", "czerwca",
	"lipca", "sierpnia", "września", "października", "listopada", "grudnia",
}

// FormatPolishDate renders a date with the Polish genitive month name
// ("1 stycznia 2025"). A nil date renders the "not specified" label.
func FormatPolishDate(t *time.Time) string {
	if t == nil {
		return T(LocalePolish, "not_specified")
	}
	return fmt.Sprintf("%d %s %d", t.Day(), polishMonths[t.Month()-1], t.Year())
}
