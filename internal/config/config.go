package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// InMemory switches the repository to the in-process store. Demo mode only;
	// nothing survives a restart.
	InMemory bool

	// Verification gate configuration. The quote is declarative: it prices the
	// verification, it does not open a payment channel.
	VerifyPriceAmount   decimal.Decimal
	VerifyPriceCurrency string
	VerifyRecipient     string
	SettlementNetwork   string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:         getEnvAsBool("DEVELOPMENT", false),
		APIPort:             getEnvAsInt("API_PORT", 5000),
		PostgresUser:        getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:    getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:        getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:        getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:          getEnv("POSTGRES_DB", "qgrid"),
		InMemory:            getEnvAsBool("IN_MEMORY", false),
		VerifyPriceAmount:   getEnvAsDecimal("VERIFY_PRICE_AMOUNT", decimal.RequireFromString("0.15")),
		VerifyPriceCurrency: getEnv("VERIFY_PRICE_CURRENCY", "USDC"),
		VerifyRecipient:     getEnv("VERIFY_RECIPIENT", "0.0.123456"),
		SettlementNetwork:   getEnv("SETTLEMENT_NETWORK", "hedera"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if !c.InMemory {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be a valid port number")
	}

	if c.VerifyPriceAmount.IsNegative() || c.VerifyPriceAmount.IsZero() {
		return fmt.Errorf("VERIFY_PRICE_AMOUNT must be positive")
	}

	if c.VerifyPriceCurrency == "" {
		return fmt.Errorf("VERIFY_PRICE_CURRENCY is required")
	}

	if c.VerifyRecipient == "" {
		return fmt.Errorf("VERIFY_RECIPIENT is required")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDecimal(name string, defaultValue decimal.Decimal) decimal.Decimal {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := decimal.NewFromString(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
