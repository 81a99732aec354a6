package i18n

import (
	"testing"
	"time"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("PL-pl") != "pl" {
		t.Fatalf("expected pl for PL-pl")
	}
	if DetectLanguage("pl,en;q=0.8") != "pl" {
		t.Fatalf("expected pl")
	}
	if DetectLanguage("de-DE") != "en" {
		t.Fatalf("expected en fallback for unsupported language")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "invoice_title") != "INVOICE" {
		t.Fatalf("expected INVOICE")
	}
	if T("pl", "invoice_title") != "FAKTURA" {
		t.Fatalf("expected FAKTURA")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to English translation
	if T("de", "subtotal") != "Subtotal:" {
		t.Fatalf("expected en fallback for de lang")
	}
}

func TestFormatPolishDate(t *testing.T) {
	d := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatPolishDate(&d); got != "1 stycznia 2025" {
		t.Fatalf("got %q", got)
	}
	d2 := time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC)
	if got := FormatPolishDate(&d2); got != "30 września 2024" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPolishDate(nil); got != "Nie określono" {
		t.Fatalf("got %q", got)
	}
}
