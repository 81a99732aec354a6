package models

import "github.com/shopspring/decimal"

// Monetary amounts are int64 minor currency units (cents) throughout; tax rates
// are integer basis points (hundredths of a percent, 2300 = 23.00%). Hours are
// fractional, so deriving cents goes through shopspring/decimal and rounds
// half-up to the nearest cent.

// AmountForHours returns round(hours * rateCents) in cents.
func AmountForHours(hours float64, rateCents int64) int64 {
	return decimal.NewFromFloat(hours).
		Mul(decimal.NewFromInt(rateCents)).
		Round(0).
		IntPart()
}

// TaxAmountFor returns round(subtotalCents * taxRateBP / 10000) in cents.
func TaxAmountFor(subtotalCents, taxRateBP int64) int64 {
	return decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromInt(taxRateBP)).
		Div(decimal.NewFromInt(10000)).
		Round(0).
		IntPart()
}

// FormatCents renders cents as a plain decimal string ("175.00").
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
