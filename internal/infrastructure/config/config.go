// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port     string
	DataDir  string
	LogLevel logger.Level

	RateAPIURL       string
	RateBaseCurrency string
	RateAPITimeout   time.Duration
	RateCacheTTL     time.Duration

	BadgerSyncWrites bool
}

// Load reads configuration from environment variables. Values in envFiles (".env" when none
// are given) fill in variables the environment does not already set; a missing file is ignored.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("RATE_API_URL", "https://api.exchangeratesapi.io/latest")
	v.SetDefault("RATE_BASE_CURRENCY", "KRW")
	v.SetDefault("RATE_API_TIMEOUT", "10s")
	v.SetDefault("RATE_CACHE_TTL", "24h")
	v.SetDefault("BADGER_SYNC_WRITES", true)
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetString("PORT"),
		DataDir:          v.GetString("DATA_DIR"),
		LogLevel:         logger.ParseLevel(v.GetString("LOG_LEVEL")),
		RateAPIURL:       v.GetString("RATE_API_URL"),
		RateBaseCurrency: strings.ToUpper(v.GetString("RATE_BASE_CURRENCY")),
		BadgerSyncWrites: v.GetBool("BADGER_SYNC_WRITES"),
	}

	var err error
	if cfg.RateAPITimeout, err = duration(v, "RATE_API_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RateCacheTTL, err = duration(v, "RATE_CACHE_TTL"); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DATA_DIR must not be empty")
	}
	if len(cfg.RateBaseCurrency) != 3 {
		return nil, fmt.Errorf("RATE_BASE_CURRENCY must be a 3-letter code, got %q", cfg.RateBaseCurrency)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

// Addr returns the listen address for Port
func (c *Config) Addr() string {
	return ":" + c.Port
}
