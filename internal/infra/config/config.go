package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string
	TelegramToken   string // Optional: admin bot is disabled when empty
	AdminTelegramID int64
	LogLevel        string
	Environment     string
	CronSpecSweep   string // When the daily transition sweep runs
	TimeZone        string // Location for the cron schedule and for calendar-day calculations
	SweepTimeout    time.Duration
	ApplySchema     bool
}

// Location resolves TimeZone.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist; existing env variables are not overridden.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CRON_SPEC_SWEEP", "0 6 * * *") // Default: 06:00 daily
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("SWEEP_TIMEOUT", "10m")
	v.SetDefault("APPLY_SCHEMA", false)

	cfg := &AppConfig{
		DatabaseURL:   v.GetString("DATABASE_URL"),
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		Environment:   strings.ToLower(v.GetString("ENVIRONMENT")),
		CronSpecSweep: v.GetString("CRON_SPEC_SWEEP"),
		TimeZone:      v.GetString("TIMEZONE"),
		SweepTimeout:  v.GetDuration("SWEEP_TIMEOUT"),
		ApplySchema:   v.GetBool("APPLY_SCHEMA"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	if cfg.TelegramToken != "" {
		if !v.IsSet("ADMIN_TELEGRAM_ID") {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		adminID := v.GetInt64("ADMIN_TELEGRAM_ID")
		if adminID == 0 {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q", v.GetString("ADMIN_TELEGRAM_ID"))
		}
		cfg.AdminTelegramID = adminID
	}

	if cfg.SweepTimeout <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_TIMEOUT %q", v.GetString("SWEEP_TIMEOUT"))
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}
