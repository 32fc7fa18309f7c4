package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DATA_DIR", "LOG_LEVEL", "RATE_API_URL", "RATE_BASE_CURRENCY",
	"RATE_API_TIMEOUT", "RATE_CACHE_TTL", "BADGER_SYNC_WRITES",
}

// clearEnv unsets every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, logger.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "https://api.exchangeratesapi.io/latest", cfg.RateAPIURL)
	assert.Equal(t, "KRW", cfg.RateBaseCurrency)
	assert.Equal(t, 10*time.Second, cfg.RateAPITimeout)
	assert.Equal(t, 24*time.Hour, cfg.RateCacheTTL)
	assert.True(t, cfg.BadgerSyncWrites)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_BASE_CURRENCY", "usd")
	t.Setenv("RATE_API_TIMEOUT", "3s")
	t.Setenv("BADGER_SYNC_WRITES", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, logger.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "USD", cfg.RateBaseCurrency)
	assert.Equal(t, 3*time.Second, cfg.RateAPITimeout)
	assert.False(t, cfg.BadgerSyncWrites)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=6060\nDATA_DIR=/var/lib/travel\nRATE_CACHE_TTL=1h\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// the environment wins over the file
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/var/lib/travel", cfg.DataDir)
	assert.Equal(t, time.Hour, cfg.RateCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RATE_API_TIMEOUT":   "soon",
		"RATE_CACHE_TTL":     "-1h",
		"RATE_BASE_CURRENCY": "WON!",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
