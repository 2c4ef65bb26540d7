package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, "5-M", cfg.TokenRateLimit)
	assert.False(t, cfg.StrictRetirementTransitions)
	assert.True(t, cfg.RequireReceiptOverride)
	assert.True(t, decimal.NewFromInt(5000).Equal(cfg.MaxAdvanceAmount))
	assert.Equal(t, 30, cfg.OverdueAfterDays)
	assert.Equal(t, "@daily", cfg.OverdueScanSchedule)
	assert.True(t, cfg.SeedDemoData)
}

func TestFromViper_PostgresInferredFromURL(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"PGSQL_URL": "postgres://localhost/advances"}))
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.False(t, cfg.SeedDemoData)
}

func TestFromViper_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"unknown backend", map[string]any{"STORAGE_BACKEND": "firebase"}},
		{"postgres without url", map[string]any{"STORAGE_BACKEND": "postgres"}},
		{"bad max amount", map[string]any{"MAX_ADVANCE_AMOUNT": "lots"}},
		{"negative max amount", map[string]any{"MAX_ADVANCE_AMOUNT": "-1"}},
		{"negative overdue days", map[string]any{"OVERDUE_AFTER_DAYS": -3}},
		{"default secret in production", map[string]any{"IS_PRODUCTION": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"STRICT_RETIREMENT_TRANSITIONS": true,
		"MAX_ADVANCE_AMOUNT":            "0",
		"JWT_EXPIRY_DURATION":           "garbage",
		"OVERDUE_SCAN_SCHEDULE":         "  ",
		"JWT_SECRET":                    "prod-secret",
		"IS_PRODUCTION":                 true,
	}))
	require.NoError(t, err)
	assert.True(t, cfg.StrictRetirementTransitions)
	assert.True(t, cfg.MaxAdvanceAmount.IsZero())
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Empty(t, cfg.OverdueScanSchedule)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
}
