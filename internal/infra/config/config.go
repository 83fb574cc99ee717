package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	// CronSpecReminders drives the main daily trigger evaluation.
	CronSpecReminders string
	// CronSpecMiddayRecheck re-evaluates the same day; the fired set
	// deduplicates, so the second run only catches what failed earlier.
	CronSpecMiddayRecheck string

	// AfterCloseMaxDays bounds how long after a card's closing date an
	// "after closing" trigger may still fire.
	AfterCloseMaxDays int

	// DefaultCurrency is the currency card spend summaries are computed in.
	DefaultCurrency string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing .env
	// file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecReminders = os.Getenv("CRON_SPEC_REMINDERS")
	if cfg.CronSpecReminders == "" {
		cfg.CronSpecReminders = "0 9 * * *" // Default: 9:00 AM daily
	}

	cfg.CronSpecMiddayRecheck = os.Getenv("CRON_SPEC_MIDDAY_RECHECK")
	if cfg.CronSpecMiddayRecheck == "" {
		cfg.CronSpecMiddayRecheck = "0 15 * * *" // Default: 3:00 PM daily
	}

	cfg.AfterCloseMaxDays = 7
	if v := os.Getenv("AFTER_CLOSE_MAX_DAYS"); v != "" {
		cfg.AfterCloseMaxDays, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AFTER_CLOSE_MAX_DAYS: %w", err)
		}
	}

	cfg.DefaultCurrency = os.Getenv("DEFAULT_CURRENCY")
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}

	return cfg, nil
}
