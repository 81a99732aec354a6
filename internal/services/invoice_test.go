package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightpl/hourbill/internal/db"
	"github.com/brightpl/hourbill/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func createTestCompany(t *testing.T, conn *gorm.DB, rate int64) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:     "Acme Corp",
		Email:    "billing@acme.example",
		IsActive: true,
	}
	if rate > 0 {
		company.DefaultHourlyRate = &rate
	}
	require.NoError(t, conn.Create(company).Error)
	return company
}

func createTestItem(t *testing.T, conn *gorm.DB, companyID uint, hours float64, day time.Time) *models.BillableItem {
	t.Helper()
	item := &models.BillableItem{
		CompanyID:   companyID,
		Description: fmt.Sprintf("Work on %s", day.Format("2006-01-02")),
		DateWorked:  day,
		Hours:       hours,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func TestNextInvoiceNumberFirstOfDay(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	number, err := svc.NextInvoiceNumber(now)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250101-001", number)
}

func TestNextInvoiceNumberIdempotentWithoutPersist(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	first, err := svc.NextInvoiceNumber(now)
	require.NoError(t, err)
	second, err := svc.NextInvoiceNumber(now)
	require.NoError(t, err)
	assert.Equal(t, first, second, "generation must not consume a number")
}

func TestNextInvoiceNumberIncrementsAfterPersist(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	company := createTestCompany(t, conn, 5000)

	require.NoError(t, conn.Create(&models.Invoice{
		CompanyID: company.ID,
		Number:    "INV-20250101-001",
		IssueDate: now,
	}).Error)

	number, err := svc.NextInvoiceNumber(now)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250101-002", number)
}

func TestNextInvoiceNumberIgnoresNonNumericSuffix(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	company := createTestCompany(t, conn, 5000)

	for i, raw := range []string{"INV-20250101-abc", "INV-20250101-002"} {
		require.NoError(t, conn.Create(&models.Invoice{
			CompanyID: company.ID,
			Number:    raw,
			IssueDate: now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	number, err := svc.NextInvoiceNumber(now)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250101-003", number)
}

func TestNextInvoiceNumberScopedToDay(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)

	require.NoError(t, conn.Create(&models.Invoice{
		CompanyID: company.ID,
		Number:    "INV-20241231-007",
		IssueDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}).Error)

	number, err := svc.NextInvoiceNumber(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "INV-20250101-001", number)
}

func TestFallbackInvoiceNumber(t *testing.T) {
	now := time.Date(2025, 1, 1, 13, 45, 9, 0, time.UTC)
	assert.Equal(t, "INV-20250101134509", FallbackInvoiceNumber(now))
}

func TestCreateInvoiceTotals(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	createTestItem(t, conn, company.ID, 2.0, day)
	createTestItem(t, conn, company.ID, 1.5, day.AddDate(0, 0, 1))

	invoice, err := svc.CreateInvoice(CreateInvoiceParams{
		CompanyID: company.ID,
		IssueDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		TaxRateBP: 2300,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(17500), invoice.Subtotal)
	assert.Equal(t, int64(4025), invoice.TaxAmount)
	assert.Equal(t, int64(21525), invoice.TotalAmount)
	assert.Equal(t, invoice.Subtotal+invoice.TaxAmount, invoice.TotalAmount)
	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	require.Len(t, invoice.Items, 2)

	// Persisted row matches the returned one.
	var stored models.Invoice
	require.NoError(t, conn.First(&stored, invoice.ID).Error)
	assert.Equal(t, invoice.TotalAmount, stored.TotalAmount)
	assert.Equal(t, invoice.Number, stored.Number)
}

func TestCreateInvoiceNumberScopedToIssueDate(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	createTestItem(t, conn, company.ID, 1.0, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	// Backdated issue date: the number prefix follows it, not today.
	invoice, err := svc.CreateInvoice(CreateInvoiceParams{
		CompanyID: company.ID,
		IssueDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20250115-001", invoice.Number)
}

func TestCreateInvoiceZeroRateBillsAtZero(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 0)
	createTestItem(t, conn, company.ID, 3.0, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	invoice, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID, TaxRateBP: 2300})
	require.NoError(t, err)
	assert.Equal(t, int64(0), invoice.Subtotal)
	assert.Equal(t, int64(0), invoice.TotalAmount)
}

func TestCreateInvoiceItemRateOverridesCompanyDefault(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	item := createTestItem(t, conn, company.ID, 2.0, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	rate := int64(8000)
	item.HourlyRate = &rate
	require.NoError(t, conn.Save(item).Error)

	invoice, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, int64(8000), invoice.Items[0].UnitPrice)
	assert.Equal(t, int64(16000), invoice.Subtotal)
}

func TestCreateInvoiceNothingToBill(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)

	_, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID})
	assert.ErrorIs(t, err, ErrNothingToBill)
}

func TestCreateInvoiceCompanyNotFound(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)

	_, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: 999})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateInvoiceInactiveCompany(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	require.NoError(t, conn.Model(company).Update("is_active", false).Error)
	createTestItem(t, conn, company.ID, 1.0, time.Now())

	_, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateInvoiceTaxRateOutOfRange(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)

	_, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: 1, TaxRateBP: -1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateInvoiceFlagsItemsExactlyOnce(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	first := createTestItem(t, conn, company.ID, 2.0, day)

	invoice, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID})
	require.NoError(t, err)

	var reloaded models.BillableItem
	require.NoError(t, conn.First(&reloaded, first.ID).Error)
	assert.True(t, reloaded.IsInvoiced)
	require.NotNil(t, reloaded.InvoiceID)
	assert.Equal(t, invoice.ID, *reloaded.InvoiceID)

	// A later entry produces a second invoice that excludes the first item.
	second := createTestItem(t, conn, company.ID, 1.0, day.AddDate(0, 0, 5))
	next, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID, Number: "INV-MANUAL-1"})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Equal(t, second.Description, next.Items[0].Description)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestItem(t, conn, company.ID, 1.0, day)
	createTestItem(t, conn, company.ID, 1.0, day.AddDate(0, 0, 1))

	_, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID, Number: "INV-20250301-001"})
	require.NoError(t, err)

	createTestItem(t, conn, company.ID, 1.0, day.AddDate(0, 0, 2))
	_, err = svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID, Number: "INV-20250301-001"})
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	// The failed attempt must not have flagged the remaining item.
	unbilled, err := svc.UnbilledItems(company.ID)
	require.NoError(t, err)
	assert.Len(t, unbilled, 1)
}

func TestCreateInvoiceLineOrderFollowsDateWorked(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)

	// Inserted newest first; lines must still come out oldest first.
	createTestItem(t, conn, company.ID, 1.0, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC))
	createTestItem(t, conn, company.ID, 1.0, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	createTestItem(t, conn, company.ID, 1.0, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))

	invoice, err := svc.CreateInvoice(CreateInvoiceParams{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, invoice.Items, 3)
	assert.Equal(t, "Work on 2025-04-01", invoice.Items[0].Description)
	assert.Equal(t, "Work on 2025-04-02", invoice.Items[1].Description)
	assert.Equal(t, "Work on 2025-04-03", invoice.Items[2].Description)
	for i, line := range invoice.Items {
		assert.Equal(t, i, line.LineOrder)
	}
}

func TestGetRevenueCountsOnlyPaid(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	company := createTestCompany(t, conn, 5000)

	for i, tc := range []struct {
		status models.InvoiceStatus
		total  int64
	}{
		{models.InvoiceStatusPaid, 10000},
		{models.InvoiceStatusPaid, 2500},
		{models.InvoiceStatusSent, 99999},
	} {
		require.NoError(t, conn.Create(&models.Invoice{
			CompanyID:   company.ID,
			Number:      fmt.Sprintf("INV-REV-%03d", i),
			IssueDate:   time.Now(),
			Status:      tc.status,
			TotalAmount: tc.total,
		}).Error)
	}

	revenue, err := svc.GetRevenue()
	require.NoError(t, err)
	assert.Equal(t, int64(12500), revenue)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: invoices.number")))
	assert.True(t, isUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_invoices_number"`)))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
