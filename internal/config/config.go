// Package config provides application configuration loaded from environment
// variables. Seller identity is explicit config handed to the renderer rather
// than globals read at render time.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"hourbill"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	Server struct {
		ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
		IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	}

	// DSN selects the driver by scheme: postgres://... for PostgreSQL,
	// anything else is treated as a sqlite file path.
	Database struct {
		DSN string `envconfig:"DATABASE_DSN" default:"data/hourbill.db"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
	}

	Invoice struct {
		// DefaultTaxRateBP is in basis points (2300 = 23.00%).
		DefaultTaxRateBP int64  `envconfig:"DEFAULT_TAX_RATE_BP" default:"0"`
		PaymentTermsDays int    `envconfig:"PAYMENT_TERMS_DAYS" default:"30"`
		OutputDir        string `envconfig:"GENERATED_DIR" default:"generated"`
		// HeaderImage is the optional full-width banner for the Polish layout.
		HeaderImage string `envconfig:"INVOICE_HEADER_IMAGE" default:"assets/invoice_header.png"`
	}

	Seller SellerConfig
}

// SellerConfig is the issuing party printed on the Polish Faktura layout.
type SellerConfig struct {
	Name         string `envconfig:"SELLER_NAME" default:"Twoja Firma Sp. z o.o."`
	BusinessType string `envconfig:"SELLER_BUSINESS_TYPE"`
	Address      string `envconfig:"SELLER_ADDRESS" default:"ul. Przykładowa 123"`
	City         string `envconfig:"SELLER_CITY" default:"00-000 Warszawa"`
	NIP          string `envconfig:"SELLER_NIP" default:"123-456-78-90"`
	REGON        string `envconfig:"SELLER_REGON"`
	Phone        string `envconfig:"SELLER_PHONE"`
	Email        string `envconfig:"SELLER_EMAIL"`
	BankName     string `envconfig:"SELLER_BANK_NAME"`
	BankAccount  string `envconfig:"SELLER_BANK_ACCOUNT"`

	// Brand strings used for the generated text banner when no header image
	// is available.
	HeaderTitle       string `envconfig:"SELLER_HEADER_TITLE"`
	HeaderSubtitle    string `envconfig:"SELLER_HEADER_SUBTITLE"`
	HeaderDescription string `envconfig:"SELLER_HEADER_DESC"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
