// Package config lee .env + entorno con viper y valida los valores.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// DBDSN vacío => repositorio en memoria.
	DBDSN          string        `mapstructure:"DB_DSN"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBPingTimeout  time.Duration `mapstructure:"DB_PING_TIMEOUT"`

	ReminderTimeZone     string        `mapstructure:"REMINDER_TIMEZONE"`
	ReminderMessageMode  string        `mapstructure:"REMINDER_MESSAGE_MODE"`
	ReminderSMSRecipient string        `mapstructure:"REMINDER_SMS_RECIPIENT"`
	ReminderSweepAt      string        `mapstructure:"REMINDER_SWEEP_AT"`
	ReminderConcurrency  int           `mapstructure:"REMINDER_CONCURRENCY"`
	ReminderTimeout      time.Duration `mapstructure:"REMINDER_TIMEOUT"`

	SemaphoreBaseURL    string `mapstructure:"SEMAPHORE_BASE_URL"`
	SemaphoreAPIKey     string `mapstructure:"SEMAPHORE_API_KEY"`
	SemaphoreSenderName string `mapstructure:"SEMAPHORE_SENDER_NAME"`

	SMSRatePerSecond float64 `mapstructure:"SMS_RATE_PER_SECOND"`
	SMSBurst         int64   `mapstructure:"SMS_BURST"`

	CalendarBaseURL string `mapstructure:"CALENDAR_BASE_URL"`
	CalendarID      string `mapstructure:"CALENDAR_ID"`
	CalendarToken   string `mapstructure:"CALENDAR_TOKEN"`
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"ENV":                    "dev",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "text",
	"APP_NAME":               "tb-treatment-plans",
	"DB_DSN":                 "",
	"DB_MAX_OPEN_CONNS":      8,
	"DB_PING_TIMEOUT":        "5s",
	"REMINDER_TIMEZONE":      "Asia/Manila",
	"REMINDER_MESSAGE_MODE":  "broadcast",
	"REMINDER_SMS_RECIPIENT": "",
	"REMINDER_SWEEP_AT":      "07:00",
	"REMINDER_CONCURRENCY":   4,
	"REMINDER_TIMEOUT":       "2m",
	"SEMAPHORE_BASE_URL":     "https://api.semaphore.co",
	"SEMAPHORE_API_KEY":      "",
	"SEMAPHORE_SENDER_NAME":  "",
	"SMS_RATE_PER_SECOND":    2.0,
	"SMS_BURST":              5,
	"CALENDAR_BASE_URL":      "https://www.googleapis.com/calendar/v3",
	"CALENDAR_ID":            "",
	"CALENDAR_TOKEN":         "",
}

// NewViper arma un viper con defaults y env vars ya ligadas. El CLI le
// agrega sus flags antes de llamar a FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()
	return v
}

func Load() (*Config, error) {
	return FromViper(NewViper())
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.trim()

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string { return ":" + c.Port }

func (c *Config) UsePostgres() bool { return c.DBDSN != "" }

func (c *Config) SMSConfigured() bool { return c.SemaphoreAPIKey != "" }

func (c *Config) CalendarConfigured() bool { return c.CalendarID != "" && c.CalendarToken != "" }

func (c *Config) trim() {
	for _, s := range []*string{
		&c.Port, &c.Env, &c.LogLevel, &c.LogFormat, &c.AppName, &c.DBDSN,
		&c.ReminderTimeZone, &c.ReminderMessageMode, &c.ReminderSMSRecipient, &c.ReminderSweepAt,
		&c.SemaphoreBaseURL, &c.SemaphoreAPIKey, &c.SemaphoreSenderName,
		&c.CalendarBaseURL, &c.CalendarID, &c.CalendarToken,
	} {
		*s = strings.TrimSpace(*s)
	}
	c.Env = strings.ToLower(c.Env)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.ReminderMessageMode = strings.ToLower(c.ReminderMessageMode)
}

func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	if err := validateOneOf(cfg.Env, "dev", "staging", "prod", "test"); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}
	if err := validateOneOf(cfg.LogLevel, "debug", "info", "warn", "warning", "error"); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if err := validateOneOf(cfg.LogFormat, "text", "json"); err != nil {
		return fmt.Errorf("invalid LOG_FORMAT: %w", err)
	}
	if _, err := time.LoadLocation(cfg.ReminderTimeZone); err != nil || cfg.ReminderTimeZone == "" {
		return fmt.Errorf("invalid REMINDER_TIMEZONE: unknown time zone %q", cfg.ReminderTimeZone)
	}
	if err := validateOneOf(cfg.ReminderMessageMode, "broadcast", "per_date"); err != nil {
		return fmt.Errorf("invalid REMINDER_MESSAGE_MODE: %w", err)
	}
	if err := validateClock(cfg.ReminderSweepAt); err != nil {
		return fmt.Errorf("invalid REMINDER_SWEEP_AT: %w", err)
	}
	if cfg.ReminderConcurrency <= 0 {
		return fmt.Errorf("invalid REMINDER_CONCURRENCY: must be positive, got %d", cfg.ReminderConcurrency)
	}
	if cfg.ReminderTimeout <= 0 {
		return fmt.Errorf("invalid REMINDER_TIMEOUT: must be positive, got %s", cfg.ReminderTimeout)
	}
	if cfg.SMSRatePerSecond < 0 {
		return fmt.Errorf("invalid SMS_RATE_PER_SECOND: must not be negative")
	}
	if cfg.SMSBurst < 0 {
		return fmt.Errorf("invalid SMS_BURST: must not be negative")
	}
	if cfg.DBMaxOpenConns <= 0 {
		return fmt.Errorf("invalid DB_MAX_OPEN_CONNS: must be positive, got %d", cfg.DBMaxOpenConns)
	}
	if cfg.DBPingTimeout <= 0 {
		return fmt.Errorf("invalid DB_PING_TIMEOUT: must be positive, got %s", cfg.DBPingTimeout)
	}
	if cfg.Env == "prod" && !cfg.UsePostgres() {
		return fmt.Errorf("invalid DB_DSN: required when ENV=prod")
	}
	return nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", n)
	}
	return nil
}

func validateOneOf(v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("must be one of %s, got %q", strings.Join(allowed, ", "), v)
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("must be HH:MM, got %q", s)
	}
	return nil
}
