package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ORDER_EXPIRY", "")
	t.Setenv("SALT_ROUND", "")

	cfg := FromEnv()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.OrderExpiry)
	assert.Equal(t, 12, cfg.SaltRound)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ORDER_EXPIRY", "2h")
	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("SALT_ROUND", "not-a-number")
	t.Setenv("PUBLIC_BASE_URL", "https://learn.example.com/")

	cfg := FromEnv()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.OrderExpiry)
	assert.InDelta(t, 0.18, cfg.TaxRate, 1e-9)
	assert.Equal(t, 12, cfg.SaltRound)
	assert.Equal(t, "https://learn.example.com", cfg.PublicBaseURL)
}
