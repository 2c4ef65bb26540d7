package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	StorageBackend    string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	MigrationsPath    string
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	FrontendBaseURL   string
	TokenRateLimit    string

	// Lifecycle rules
	StrictRetirementTransitions bool
	RequireReceiptOverride      bool
	MaxAdvanceAmount            decimal.Decimal // zero disables the cap

	// Overdue scan
	OverdueAfterDays    int
	OverdueScanSchedule string // cron spec, empty disables

	SeedDemoData bool
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORAGE_BACKEND", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "cash-advance-app")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("STRICT_RETIREMENT_TRANSITIONS", false)
	v.SetDefault("REQUIRE_RECEIPT_OVERRIDE", true)
	v.SetDefault("MAX_ADVANCE_AMOUNT", "5000")
	v.SetDefault("OVERDUE_AFTER_DAYS", 30)
	v.SetDefault("OVERDUE_SCAN_SCHEDULE", "@daily")
	v.SetDefault("SEED_DEMO_DATA", true)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:                 v.GetString("PGSQL_URL"),
		Port:                        v.GetString("PORT"),
		IsProduction:                v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:               v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:              v.GetString("MIGRATIONS_PATH"),
		JWTSecret:                   v.GetString("JWT_SECRET"),
		JWTIssuer:                   v.GetString("JWT_ISSUER"),
		FrontendBaseURL:             v.GetString("FRONTEND_BASE_URL"),
		TokenRateLimit:              v.GetString("LOGIN_RATE_LIMIT"),
		StrictRetirementTransitions: v.GetBool("STRICT_RETIREMENT_TRANSITIONS"),
		RequireReceiptOverride:      v.GetBool("REQUIRE_RECEIPT_OVERRIDE"),
		OverdueAfterDays:            v.GetInt("OVERDUE_AFTER_DAYS"),
		OverdueScanSchedule:         strings.TrimSpace(v.GetString("OVERDUE_SCAN_SCHEDULE")),
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND")))
	switch cfg.StorageBackend {
	case "":
		cfg.StorageBackend = StorageMemory
		if cfg.DatabaseURL != "" {
			cfg.StorageBackend = StoragePostgres
		}
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == StoragePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("STORAGE_BACKEND=postgres requires PGSQL_URL")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiryDuration <= 0 {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	maxAmount, err := decimal.NewFromString(strings.TrimSpace(v.GetString("MAX_ADVANCE_AMOUNT")))
	if err != nil || maxAmount.IsNegative() {
		return nil, fmt.Errorf("invalid MAX_ADVANCE_AMOUNT %q", v.GetString("MAX_ADVANCE_AMOUNT"))
	}
	cfg.MaxAdvanceAmount = maxAmount

	if cfg.OverdueAfterDays < 0 {
		return nil, fmt.Errorf("OVERDUE_AFTER_DAYS must not be negative, got %d", cfg.OverdueAfterDays)
	}

	// demo data only makes sense in a throwaway store
	cfg.SeedDemoData = v.GetBool("SEED_DEMO_DATA") && cfg.StorageBackend == StorageMemory

	return cfg, nil
}
