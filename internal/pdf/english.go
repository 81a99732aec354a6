package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brightpl/hourbill/internal/i18n"
	"github.com/brightpl/hourbill/internal/models"
)

const (
	enMarginLeft    = 20.0
	enContentWidth  = 176.0 // letter width 216mm minus margins
	enDescColWidth  = 86.0
	enNumColWidth   = 30.0
	enDescWrapChars = 48
)

// renderEnglish lays out the generic letter-sized invoice: header block,
// bill-to block, items table, totals rows, notes/terms, generation footer.
func (r *Renderer) renderEnglish(doc Document) ([]byte, error) {
	inv := doc.Invoice
	company := doc.Company
	lang := i18n.LocaleEnglish

	f := gofpdf.New("P", "mm", "Letter", "")
	f.SetMargins(enMarginLeft, 20, 20)
	f.SetAutoPageBreak(true, 20)
	f.AddPage()

	// Title
	f.SetFont("Helvetica", "B", 24)
	f.SetTextColor(0, 0, 139)
	f.CellFormat(enContentWidth, 14, i18n.T(lang, "invoice_title"), "", 1, "C", false, 0, "")
	f.SetTextColor(0, 0, 0)
	f.Ln(6)

	// Header block: number, dates, status
	dueDate := "N/A"
	if inv.DueDate != nil {
		dueDate = inv.DueDate.Format("2006-01-02")
	}
	status := cases.Title(language.English).String(string(inv.Status))
	headerRows := [][2]string{
		{i18n.T(lang, "invoice_number"), inv.Number},
		{i18n.T(lang, "issue_date"), inv.IssueDate.Format("2006-01-02")},
		{i18n.T(lang, "due_date"), dueDate},
		{i18n.T(lang, "status"), status},
	}
	for _, row := range headerRows {
		f.SetFont("Helvetica", "B", 10)
		f.CellFormat(50, 7, row[0], "", 0, "R", false, 0, "")
		f.SetFont("Helvetica", "", 10)
		f.CellFormat(60, 7, row[1], "", 1, "L", false, 0, "")
	}
	f.Ln(8)

	// Bill To block
	f.SetFont("Helvetica", "B", 14)
	f.SetTextColor(0, 0, 139)
	f.CellFormat(enContentWidth, 8, i18n.T(lang, "bill_to"), "", 1, "L", false, 0, "")
	f.SetTextColor(0, 0, 0)

	f.SetFont("Helvetica", "B", 11)
	f.CellFormat(enContentWidth, 6, company.Name, "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	for _, line := range []string{company.ContactPerson, company.Email, company.Phone, company.FullAddress()} {
		if line != "" {
			f.CellFormat(enContentWidth, 5, line, "", 1, "L", false, 0, "")
		}
	}
	f.Ln(8)

	// Items table
	f.SetFont("Helvetica", "B", 14)
	f.SetTextColor(0, 0, 139)
	f.CellFormat(enContentWidth, 8, i18n.T(lang, "items_header"), "", 1, "L", false, 0, "")
	f.SetTextColor(0, 0, 0)
	f.Ln(2)

	f.SetFont("Helvetica", "B", 10)
	f.SetFillColor(128, 128, 128)
	f.SetTextColor(255, 255, 255)
	f.CellFormat(enDescColWidth, 8, i18n.T(lang, "description"), "1", 0, "C", true, 0, "")
	f.CellFormat(enNumColWidth, 8, i18n.T(lang, "quantity"), "1", 0, "C", true, 0, "")
	f.CellFormat(enNumColWidth, 8, i18n.T(lang, "rate"), "1", 0, "C", true, 0, "")
	f.CellFormat(enNumColWidth, 8, i18n.T(lang, "amount"), "1", 1, "C", true, 0, "")
	f.SetTextColor(0, 0, 0)

	f.SetFont("Helvetica", "", 9)
	for _, item := range doc.Items {
		lines := wrapText(item.Description, enDescWrapChars)
		rowHeight := float64(len(lines)) * 5
		if rowHeight < 7 {
			rowHeight = 7
		}

		x, y := f.GetXY()
		f.Rect(x, y, enDescColWidth, rowHeight, "D")
		for i, line := range lines {
			f.SetXY(x+1, y+float64(i)*5+1)
			f.CellFormat(enDescColWidth-2, 5, line, "", 0, "L", false, 0, "")
		}
		f.SetXY(x+enDescColWidth, y)
		f.CellFormat(enNumColWidth, rowHeight, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		f.CellFormat(enNumColWidth, rowHeight, "$"+models.FormatCents(item.UnitPrice), "1", 0, "R", false, 0, "")
		f.CellFormat(enNumColWidth, rowHeight, "$"+models.FormatCents(item.TotalAmount), "1", 1, "R", false, 0, "")
	}

	// Totals rows
	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(enDescColWidth+enNumColWidth, 8, "", "", 0, "L", false, 0, "")
	f.CellFormat(enNumColWidth, 8, i18n.T(lang, "subtotal"), "T", 0, "R", false, 0, "")
	f.CellFormat(enNumColWidth, 8, "$"+models.FormatCents(inv.Subtotal), "T", 1, "R", false, 0, "")

	if inv.TaxAmount > 0 {
		taxLabel := fmt.Sprintf("%s (%.2f%%):", i18n.T(lang, "tax"), float64(inv.TaxRate)/100)
		f.CellFormat(enDescColWidth+enNumColWidth, 8, "", "", 0, "L", false, 0, "")
		f.CellFormat(enNumColWidth, 8, taxLabel, "", 0, "R", false, 0, "")
		f.CellFormat(enNumColWidth, 8, "$"+models.FormatCents(inv.TaxAmount), "", 1, "R", false, 0, "")
	}

	f.SetFillColor(211, 211, 211)
	f.CellFormat(enDescColWidth+enNumColWidth, 9, "", "", 0, "L", false, 0, "")
	f.CellFormat(enNumColWidth, 9, i18n.T(lang, "total"), "T", 0, "R", true, 0, "")
	f.CellFormat(enNumColWidth, 9, "$"+models.FormatCents(inv.TotalAmount), "T", 1, "R", true, 0, "")
	f.Ln(10)

	// Notes and terms
	for _, section := range []struct{ label, text string }{
		{i18n.T(lang, "notes"), inv.Notes},
		{i18n.T(lang, "terms"), inv.Terms},
	} {
		if section.text == "" {
			continue
		}
		f.SetFont("Helvetica", "B", 12)
		f.SetTextColor(0, 0, 139)
		f.CellFormat(enContentWidth, 7, section.label, "", 1, "L", false, 0, "")
		f.SetTextColor(0, 0, 0)
		f.SetFont("Helvetica", "", 10)
		f.MultiCell(enContentWidth, 5, section.text, "", "L", false)
		f.Ln(5)
	}

	// Footer
	f.Ln(10)
	f.SetFont("Helvetica", "I", 9)
	footer := fmt.Sprintf("%s %s", i18n.T(lang, "generated_on"), time.Now().Format("2006-01-02 15:04"))
	f.CellFormat(enContentWidth, 5, footer, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render english pdf: %w", err)
	}
	return buf.Bytes(), nil
}
