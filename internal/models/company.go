package models

import (
	"strings"
	"time"
)

// Company represents an invoiced party (the customer being billed).
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string `gorm:"size:255;not null;index" json:"name"`
	Email         string `gorm:"size:255" json:"email,omitempty"`
	Phone         string `gorm:"size:50" json:"phone,omitempty"`
	Address       string `gorm:"type:text" json:"address,omitempty"`
	City          string `gorm:"size:100" json:"city,omitempty"`
	State         string `gorm:"size:100" json:"state,omitempty"`
	ZipCode       string `gorm:"size:20" json:"zip_code,omitempty"`
	Country       string `gorm:"size:100" json:"country,omitempty"`
	TaxID         string `gorm:"size:50" json:"tax_id,omitempty"`
	ContactPerson string `gorm:"size:255" json:"contact_person,omitempty"`

	// DefaultHourlyRate is in minor currency units (cents). Nil means no default;
	// items without their own rate then bill at zero.
	DefaultHourlyRate *int64 `json:"default_hourly_rate,omitempty"`
	Currency          string `gorm:"size:3;default:'USD'" json:"currency"`

	// IsActive is the soft-delete flag; deactivated companies are hidden from
	// listings but their invoices and items remain.
	IsActive bool `gorm:"default:true" json:"is_active"`

	BillableItems []BillableItem `gorm:"foreignKey:CompanyID" json:"-"`
	Invoices      []Invoice      `gorm:"foreignKey:CompanyID" json:"-"`
}

// FullAddress returns the address parts joined on commas, skipping empties.
// State and zip code share one segment ("NY 10001") when both are present.
func (c *Company) FullAddress() string {
	stateZip := c.State
	if c.ZipCode != "" {
		if stateZip != "" {
			stateZip += " " + c.ZipCode
		} else {
			stateZip = c.ZipCode
		}
	}

	var parts []string
	for _, p := range []string{c.Address, c.City, stateZip, c.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
