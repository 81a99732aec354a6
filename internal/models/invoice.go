package models

import (
	"time"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a priced, tax-computed bill for a company, built from its
// unbilled items. Amounts are cents, the tax rate is basis points.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint     `gorm:"index;not null" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	// Number must be globally unique among all invoices ever created; the
	// database constraint is the safety net against concurrent generation.
	Number    string     `gorm:"size:50;not null;uniqueIndex" json:"number"`
	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Status InvoiceStatus `gorm:"size:20;default:'draft'" json:"status"`

	Subtotal    int64 `gorm:"not null;default:0" json:"subtotal"`
	TaxRate     int64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount   int64 `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount int64 `gorm:"not null;default:0" json:"total_amount"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`
	Terms string `gorm:"type:text" json:"terms,omitempty"`

	// PDFPath records where the last rendered document was written.
	PDFPath string `gorm:"size:500" json:"pdf_path,omitempty"`

	// Payment tracking, set externally once the invoice is settled.
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	PaymentMethod string     `gorm:"size:100" json:"payment_method,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	BillableItems []BillableItem `gorm:"foreignKey:InvoiceID" json:"-"`
}

// IsDraft returns true if the invoice has not been sent yet.
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsPaid returns true once payment has been recorded.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// CalculateTotals recomputes subtotal, tax and total from the line items.
// Invariant: TotalAmount == Subtotal + TaxAmount.
func (i *Invoice) CalculateTotals() {
	var subtotal int64
	for _, item := range i.Items {
		subtotal += item.TotalAmount
	}
	i.Subtotal = subtotal
	i.TaxAmount = TaxAmountFor(subtotal, i.TaxRate)
	i.TotalAmount = i.Subtotal + i.TaxAmount
}

// InvoiceItem is one priced row on an invoice, derived from one billable item.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Description string `gorm:"type:text;not null" json:"description"`
	// Quantity is decimal hours; UnitPrice and TotalAmount are cents.
	Quantity    float64 `gorm:"type:decimal(10,2);not null;default:1" json:"quantity"`
	UnitPrice   int64   `gorm:"not null" json:"unit_price"`
	TotalAmount int64   `gorm:"not null" json:"total_amount"`

	Project      string `gorm:"size:255" json:"project,omitempty"`
	TaskCategory string `gorm:"size:100" json:"task_category,omitempty"`

	LineOrder int `gorm:"not null;default:0" json:"line_order"`
}

// CalculateTotal sets TotalAmount = round(quantity * unit price).
func (item *InvoiceItem) CalculateTotal() {
	item.TotalAmount = AmountForHours(item.Quantity, item.UnitPrice)
}
