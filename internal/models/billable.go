package models

import (
	"time"
)

// BillableItem is one unit of trackable work: hours worked against a company on
// a given date, priced at the item rate or the company default.
type BillableItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint     `gorm:"index;not null" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	Description  string `gorm:"type:text;not null" json:"description"`
	Project      string `gorm:"size:255" json:"project,omitempty"`
	TaskCategory string `gorm:"size:100" json:"task_category,omitempty"`

	DateWorked time.Time `gorm:"not null" json:"date_worked"`
	Hours      float64   `gorm:"type:decimal(5,2);not null" json:"hours"`

	// HourlyRate in cents overrides the company default when set.
	HourlyRate *int64 `json:"hourly_rate,omitempty"`
	// TotalAmount in cents is stored at creation when a rate source exists,
	// otherwise left at zero and recomputed lazily via CalculatedAmount.
	TotalAmount int64 `json:"total_amount"`

	// An item is invoiced at most once; once flagged it never appears in a
	// later unbilled selection.
	IsInvoiced bool     `gorm:"default:false;index" json:"is_invoiced"`
	InvoiceID  *uint    `gorm:"index" json:"invoice_id,omitempty"`
	Invoice    *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	// Import provenance, set only for rows created by the file importer.
	ImportSource string     `gorm:"size:255" json:"import_source,omitempty"`
	ImportDate   *time.Time `json:"import_date,omitempty"`
}

// EffectiveRate resolves the unit rate in cents: item rate, then the company
// default, then zero. A zero rate prices the item at zero, it is not an error.
func (b *BillableItem) EffectiveRate(company *Company) int64 {
	if b.HourlyRate != nil {
		return *b.HourlyRate
	}
	if company != nil && company.DefaultHourlyRate != nil {
		return *company.DefaultHourlyRate
	}
	return 0
}

// CalculatedAmount returns the billed amount in cents for this item.
func (b *BillableItem) CalculatedAmount(company *Company) int64 {
	return AmountForHours(b.Hours, b.EffectiveRate(company))
}

// UpdateTotalAmount refreshes the stored total from hours and resolved rate.
func (b *BillableItem) UpdateTotalAmount(company *Company) {
	b.TotalAmount = b.CalculatedAmount(company)
}
