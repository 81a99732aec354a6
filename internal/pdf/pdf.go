// Package pdf renders priced invoices into PDF documents. Two locale
// templates share the data model: a generic English letter layout and a
// Polish A4 "Faktura" layout with VAT columns.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/brightpl/hourbill/internal/i18n"
	"github.com/brightpl/hourbill/internal/models"
)

// SellerInfo is the issuing party shown on the Polish layout. It is passed in
// explicitly at render time; the renderer reads no global state.
type SellerInfo struct {
	Name         string
	BusinessType string
	Address      string
	City         string
	NIP          string
	REGON        string
	Phone        string
	Email        string
	BankName     string
	BankAccount  string

	// Brand strings for the generated text banner used when no header image
	// is available.
	HeaderTitle       string
	HeaderSubtitle    string
	HeaderDescription string
}

// Document bundles everything one invoice render needs.
type Document struct {
	Invoice *models.Invoice
	Company *models.Company
	Items   []models.InvoiceItem
}

// Renderer produces invoice PDFs. Rendering is a pure function of the
// document, the seller info, and the optional header image on disk.
type Renderer struct {
	Seller SellerInfo
	// HeaderImagePath is the optional full-width banner for the Polish
	// layout. A missing file falls back to the text banner, not an error.
	HeaderImagePath string
}

func NewRenderer(seller SellerInfo, headerImagePath string) *Renderer {
	return &Renderer{Seller: seller, HeaderImagePath: headerImagePath}
}

// Render produces the PDF bytes for the given locale
// (i18n.LocaleEnglish or i18n.LocalePolish).
func (r *Renderer) Render(doc Document, locale string) ([]byte, error) {
	if doc.Invoice == nil || doc.Company == nil {
		return nil, fmt.Errorf("render: invoice and company are required")
	}
	switch locale {
	case i18n.LocalePolish:
		return r.renderPolish(doc)
	case i18n.LocaleEnglish, "":
		return r.renderEnglish(doc)
	default:
		return nil, fmt.Errorf("render: unsupported locale %q", locale)
	}
}

// WriteFile renders the document and writes it to path, creating parent
// directories as needed.
func (r *Renderer) WriteFile(doc Document, locale, path string) error {
	data, err := r.Render(doc, locale)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// UnitOfMeasure infers a line item's unit from its description text. This is
// a heuristic, not a business rule: a "hours"/"godzin" keyword means hours,
// everything else is labeled a piece.
func UnitOfMeasure(description string) string {
	lower := strings.ToLower(description)
	if strings.Contains(lower, "hour") || strings.Contains(lower, "godzin") {
		return i18n.T(i18n.LocalePolish, "unit_hour")
	}
	return i18n.T(i18n.LocalePolish, "unit_piece")
}

// headerImageFile returns the banner path if the file exists, else "".
func (r *Renderer) headerImageFile() string {
	if r.HeaderImagePath == "" {
		return ""
	}
	if _, err := os.Stat(r.HeaderImagePath); err != nil {
		return ""
	}
	return r.HeaderImagePath
}

// wrapText breaks text into lines of at most maxChars runes on word
// boundaries. Overlong single words get their own line. Widths are counted in
// runes so Polish diacritics fill a column the same as ASCII.
func wrapText(text string, maxChars int) []string {
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	words := strings.Fields(text)
	var lines []string
	var current string
	currentLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		candidateLen := currentLen + wordLen
		if current != "" {
			candidateLen++
		}
		if candidateLen <= maxChars {
			if current != "" {
				current += " "
			}
			current += word
			currentLen = candidateLen
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
		currentLen = wordLen
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
