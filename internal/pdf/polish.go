package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/brightpl/hourbill/internal/i18n"
	"github.com/brightpl/hourbill/internal/models"
)

const (
	plMarginLeft   = 20.0
	plContentWidth = 170.0 // A4 width 210mm minus margins
	plHeaderHeight = 40.0
	plDescWrap     = 34
)

var plColWidths = [...]float64{10, 52, 14, 12, 22, 14, 22, 24}

// renderPolish lays out the A4 "Faktura": banner (image or generated text),
// seller/buyer columns, the VAT items table with per-line net/VAT/gross, the
// payment details table, summary, signature block and footer.
//
// Per-line VAT is computed from the invoice's single tax rate independently
// per row; the RAZEM row sums those lines rather than copying the invoice
// totals, so the two may differ by rounding within one cent per line.
func (r *Renderer) renderPolish(doc Document) ([]byte, error) {
	inv := doc.Invoice
	company := doc.Company
	seller := r.Seller
	lang := i18n.LocalePolish

	f := gofpdf.New("P", "mm", "A4", "")
	f.SetMargins(plMarginLeft, 20, 20)
	f.SetAutoPageBreak(true, 20)
	// cp1250 covers Polish diacritics with the built-in fonts; if the code
	// page were unavailable gofpdf falls back to the default translator.
	tr := f.UnicodeTranslatorFromDescriptor("cp1250")
	f.AddPage()

	if banner := r.headerImageFile(); banner != "" {
		f.ImageOptions(banner, 0, 0, 210, plHeaderHeight, false,
			gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		f.SetY(plHeaderHeight + 8)
	} else if seller.HeaderTitle != "" {
		// Generated text banner from the configured brand strings.
		f.SetFont("Helvetica", "B", 24)
		f.SetTextColor(255, 107, 53)
		f.CellFormat(plContentWidth, 10, tr(seller.HeaderTitle), "", 1, "R", false, 0, "")
		f.SetFont("Helvetica", "", 14)
		f.CellFormat(plContentWidth, 7, tr(seller.HeaderSubtitle), "", 1, "R", false, 0, "")
		f.SetTextColor(128, 128, 128)
		f.SetFont("Helvetica", "", 8)
		f.CellFormat(plContentWidth, 5, tr(seller.HeaderDescription), "", 1, "L", false, 0, "")
		f.SetTextColor(0, 0, 0)
		f.Ln(6)
	}

	// Title
	f.SetFont("Helvetica", "B", 20)
	f.CellFormat(plContentWidth, 12, tr(i18n.T(lang, "invoice_title")), "", 1, "C", false, 0, "")
	f.Ln(4)

	// Invoice identification, right-aligned
	f.SetFont("Helvetica", "B", 12)
	f.CellFormat(plContentWidth, 7, tr(fmt.Sprintf("Faktura VAT nr %s/oryginał", inv.Number)), "", 1, "R", false, 0, "")
	f.CellFormat(plContentWidth, 7, tr(i18n.FormatPolishDate(&inv.IssueDate)), "", 1, "R", false, 0, "")
	f.Ln(6)

	// Seller / buyer two-column block
	colWidth := plContentWidth / 2
	sellerLines := sellerBlock(seller, lang)
	buyerLines := buyerBlock(company, lang)

	startY := f.GetY()
	f.SetFont("Helvetica", "", 10)
	writeColumn(f, tr, plMarginLeft, startY, colWidth-5, sellerLines)
	endLeft := f.GetY()
	writeColumn(f, tr, plMarginLeft+colWidth, startY, colWidth-5, buyerLines)
	if endLeft > f.GetY() {
		f.SetY(endLeft)
	}
	f.Ln(8)

	// Items table
	f.SetFont("Helvetica", "B", 12)
	f.CellFormat(plContentWidth, 7, tr(i18n.T(lang, "items_header")), "", 1, "L", false, 0, "")
	f.Ln(2)

	headers := []string{
		i18n.T(lang, "item_no"), i18n.T(lang, "description"), i18n.T(lang, "quantity"),
		i18n.T(lang, "unit"), i18n.T(lang, "net_price"), i18n.T(lang, "vat_rate"),
		i18n.T(lang, "vat_amount"), i18n.T(lang, "gross_amount"),
	}
	f.SetFont("Helvetica", "B", 8)
	f.SetFillColor(211, 211, 211)
	for i, h := range headers {
		last := 0
		if i == len(headers)-1 {
			last = 1
		}
		f.CellFormat(plColWidths[i], 8, tr(h), "1", last, "C", true, 0, "")
	}

	vatPct := fmt.Sprintf("%.0f%%", float64(inv.TaxRate)/100)
	var netTotal, vatTotal, grossTotal int64

	f.SetFont("Helvetica", "", 8)
	for idx, item := range doc.Items {
		net := item.TotalAmount
		vat := models.TaxAmountFor(net, inv.TaxRate)
		gross := net + vat
		netTotal += net
		vatTotal += vat
		grossTotal += gross

		lines := wrapText(item.Description, plDescWrap)
		rowHeight := float64(len(lines)) * 4
		if rowHeight < 6 {
			rowHeight = 6
		}

		f.CellFormat(plColWidths[0], rowHeight, fmt.Sprintf("%d", idx+1), "1", 0, "C", false, 0, "")

		x, y := f.GetXY()
		f.Rect(x, y, plColWidths[1], rowHeight, "D")
		for i, line := range lines {
			f.SetXY(x+1, y+float64(i)*4+1)
			f.CellFormat(plColWidths[1]-2, 4, tr(line), "", 0, "L", false, 0, "")
		}
		f.SetXY(x+plColWidths[1], y)

		f.CellFormat(plColWidths[2], rowHeight, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		f.CellFormat(plColWidths[3], rowHeight, tr(UnitOfMeasure(item.Description)), "1", 0, "C", false, 0, "")
		f.CellFormat(plColWidths[4], rowHeight, tr(models.FormatCents(net)+" zł"), "1", 0, "R", false, 0, "")
		f.CellFormat(plColWidths[5], rowHeight, vatPct, "1", 0, "R", false, 0, "")
		f.CellFormat(plColWidths[6], rowHeight, tr(models.FormatCents(vat)+" zł"), "1", 0, "R", false, 0, "")
		f.CellFormat(plColWidths[7], rowHeight, tr(models.FormatCents(gross)+" zł"), "1", 1, "R", false, 0, "")
	}

	// RAZEM row: sums of the per-line values
	f.SetFont("Helvetica", "B", 9)
	f.SetFillColor(211, 211, 211)
	f.CellFormat(plColWidths[0], 8, "", "T", 0, "C", true, 0, "")
	f.CellFormat(plColWidths[1], 8, tr(i18n.T(lang, "total")), "T", 0, "L", true, 0, "")
	f.CellFormat(plColWidths[2]+plColWidths[3], 8, "", "T", 0, "C", true, 0, "")
	f.CellFormat(plColWidths[4], 8, tr(models.FormatCents(netTotal)+" zł"), "T", 0, "R", true, 0, "")
	f.CellFormat(plColWidths[5], 8, "", "T", 0, "C", true, 0, "")
	f.CellFormat(plColWidths[6], 8, tr(models.FormatCents(vatTotal)+" zł"), "T", 0, "R", true, 0, "")
	f.CellFormat(plColWidths[7], 8, tr(models.FormatCents(grossTotal)+" zł"), "T", 1, "R", true, 0, "")
	f.Ln(8)

	// Payment details table
	infoRows := [][2]string{
		{i18n.T(lang, "sale_date"), i18n.FormatPolishDate(&inv.IssueDate)},
		{i18n.T(lang, "payment_method"), "Przelew"},
		{i18n.T(lang, "payment_date"), i18n.FormatPolishDate(inv.DueDate)},
	}
	if inv.Notes != "" {
		infoRows = append(infoRows, [2]string{i18n.T(lang, "notes"), inv.Notes})
	}
	for _, row := range infoRows {
		f.SetFont("Helvetica", "B", 10)
		f.CellFormat(40, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		f.SetFont("Helvetica", "", 10)
		f.CellFormat(100, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	f.Ln(6)

	// Summary block
	f.SetFont("Helvetica", "B", 11)
	f.CellFormat(plContentWidth, 6, tr(i18n.T(lang, "summary")), "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	f.CellFormat(plContentWidth, 5, tr(i18n.T(lang, "net_value")+" "+models.FormatCents(netTotal)+" zł"), "", 1, "L", false, 0, "")
	f.CellFormat(plContentWidth, 5, tr(i18n.T(lang, "vat_value")+" "+models.FormatCents(vatTotal)+" zł"), "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(plContentWidth, 6, tr(i18n.T(lang, "to_pay")+" "+models.FormatCents(grossTotal)+" zł"), "", 1, "L", false, 0, "")
	f.Ln(10)

	// Simplified signature block
	f.SetFont("Helvetica", "", 9)
	f.CellFormat(plContentWidth/2, 5, tr(i18n.T(lang, "signature_recipient")), "", 0, "L", false, 0, "")
	f.CellFormat(plContentWidth/2, 5, tr(i18n.T(lang, "signature_issuer")), "", 1, "C", false, 0, "")
	f.Ln(10)
	f.CellFormat(plContentWidth/2, 5, "", "", 0, "L", false, 0, "")
	f.CellFormat(plContentWidth/2, 5, tr(seller.Name), "", 1, "C", false, 0, "")

	// Footer
	f.Ln(8)
	f.SetFont("Helvetica", "I", 9)
	footer := fmt.Sprintf("%s %s", i18n.T(lang, "generated_on"), time.Now().Format("02.01.2006 15:04"))
	f.CellFormat(plContentWidth, 5, tr(footer), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render polish pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// sellerBlock builds the Sprzedawca column lines; optional fields are
// skipped rather than rendered blank.
func sellerBlock(seller SellerInfo, lang string) []string {
	lines := []string{
		i18n.T(lang, "seller"),
		seller.Name,
	}
	if seller.BusinessType != "" {
		lines = append(lines, seller.BusinessType)
	}
	lines = append(lines,
		seller.City+", "+seller.Address,
		i18n.T(lang, "nip")+" "+seller.NIP,
	)
	if seller.BankName != "" && seller.BankAccount != "" {
		lines = append(lines, "Bank: "+seller.BankName+" "+i18n.T(lang, "bank_account")+" "+seller.BankAccount)
	}
	if seller.Phone != "" {
		lines = append(lines, i18n.T(lang, "phone")+" "+seller.Phone)
	}
	if seller.Email != "" {
		lines = append(lines, i18n.T(lang, "email")+" "+seller.Email)
	}
	return lines
}

// buyerBlock builds the Nabywca column lines from the billed company.
func buyerBlock(company *models.Company, lang string) []string {
	lines := []string{
		i18n.T(lang, "buyer"),
		company.Name,
	}
	if company.ContactPerson != "" {
		lines = append(lines, company.ContactPerson)
	}
	if addr := company.FullAddress(); addr != "" {
		lines = append(lines, addr)
	}
	taxID := company.TaxID
	if taxID == "" {
		taxID = i18n.T(lang, "not_provided")
	}
	lines = append(lines, i18n.T(lang, "nip")+" "+taxID)
	if company.Phone != "" {
		lines = append(lines, i18n.T(lang, "phone")+" "+company.Phone)
	}
	if company.Email != "" {
		lines = append(lines, i18n.T(lang, "email")+" "+company.Email)
	}
	return lines
}

// writeColumn writes lines top-down starting at (x, y), wrapping each line to
// the column width. The first two lines are bold.
func writeColumn(f *gofpdf.Fpdf, tr func(string) string, x, y, width float64, lines []string) {
	f.SetXY(x, y)
	for i, line := range lines {
		if i < 2 {
			f.SetFont("Helvetica", "B", 10)
		} else {
			f.SetFont("Helvetica", "", 10)
		}
		for _, wrapped := range wrapText(line, int(width/2)) {
			f.SetX(x)
			f.CellFormat(width, 5, tr(wrapped), "", 1, "L", false, 0, "")
		}
	}
}
