package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Anthropic API
	AnthropicAPIKey string
	AnthropicModel  string

	// Twilio (SMS)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string

	// Resend (email)
	ResendAPIKey string
	FromEmail    string

	// HTTP API
	ListenAddr  string
	CronSecret  string
	AdminSecret string

	// Logging
	LogLevel string

	// Scheduler settings
	DeliveryInterval time.Duration
	MaxRetries       int
	RetentionDays    int
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "data/dailydose.db"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", ""),
		TwilioAccountSID: getEnv("TWILIO_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH", ""),
		TwilioFromPhone:  getEnv("TWILIO_PHONE", ""),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		FromEmail:        getEnv("FROM_EMAIL", "Your Daily Dose <quotes@dailydose.app>"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		CronSecret:       getEnv("CRON_SECRET", ""),
		AdminSecret:      getEnv("ADMIN_SECRET", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	// Parse durations
	var err error
	cfg.DeliveryInterval, err = time.ParseDuration(getEnv("DELIVERY_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_INTERVAL: %w", err)
	}

	// Parse integers
	maxRetries, err := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RETRIES: %w", err)
	}
	cfg.MaxRetries = maxRetries

	retention, err := strconv.Atoi(getEnv("RETENTION_DAYS", "365"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_DAYS: %w", err)
	}
	cfg.RetentionDays = retention

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForGeneration checks configuration needed for quote generation.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required for quote generation")
	}
	return nil
}

// ValidateForSMS checks configuration needed for SMS delivery.
func (c *Config) ValidateForSMS() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TwilioAccountSID == "" {
		return fmt.Errorf("TWILIO_SID is required for SMS delivery")
	}
	if c.TwilioAuthToken == "" {
		return fmt.Errorf("TWILIO_AUTH is required for SMS delivery")
	}
	if c.TwilioFromPhone == "" {
		return fmt.Errorf("TWILIO_PHONE is required for SMS delivery")
	}
	return nil
}

// ValidateForEmail checks configuration needed for email delivery.
func (c *Config) ValidateForEmail() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required for email delivery")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
// Transports are optional at startup; delivery to a channel without
// credentials fails per-send and is recorded, not fatal.
func (c *Config) ValidateForServe() error {
	return c.ValidateForGeneration()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
