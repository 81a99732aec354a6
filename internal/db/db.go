// Package db handles database connection and schema migration.
package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightpl/hourbill/internal/models"
)

// ConnectAndMigrate opens the database selected by the DSN and applies GORM
// migrations. A postgres:// or postgresql:// DSN uses the PostgreSQL driver
// with startup retries; anything else is treated as a sqlite path.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty")
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var conn *gorm.DB
	var err error
	if isPostgresDSN(dsn) {
		// Retry to let the database come up first.
		for i := 0; i < 5; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			time.Sleep(2 * time.Second)
		}
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate applies GORM auto-migrations for all models.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Company{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.BillableItem{},
	); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}
