package config

import (
	"os"
	"strconv"
	"time"

	"tiltwatch/internal/alert"
)

// Config holds runtime configuration for the server.
type Config struct {
	// HTTP listen address
	HTTPAddr string
	// Postgres connection string
	DatabaseURL string
	// SMTP sender/login and credential
	EmailUser string
	EmailPass string
	// SMTP provider endpoint (implicit TLS)
	SMTPHost string
	SMTPPort int
	// Log level (zerolog names)
	LogLevel string
	// Alert thresholds
	Thresholds alert.Thresholds
	// Bounded I/O timeouts
	DBTimeout   time.Duration
	SMTPTimeout time.Duration
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		DatabaseURL: "postgres://localhost:5432/tiltwatch",
		SMTPHost:    "smtp.gmail.com",
		SMTPPort:    465,
		LogLevel:    "info",
		Thresholds:  alert.DefaultThresholds(),
		DBTimeout:   5 * time.Second,
		SMTPTimeout: 10 * time.Second,
	}
}

// FromEnv builds a config from the environment on top of the defaults.
// Recognized variables: HTTP_ADDR, DATABASE_URL, EMAIL_USER, EMAIL_PASS,
// SMTP_HOST, SMTP_PORT, LOG_LEVEL, UV_THRESHOLD, SMOKE_THRESHOLD,
// TILT_THRESHOLD, DB_TIMEOUT, SMTP_TIMEOUT.
func FromEnv() *Config {
	cfg := Default()

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.EmailUser, "EMAIL_USER")
	setString(&cfg.EmailPass, "EMAIL_PASS")
	setString(&cfg.SMTPHost, "SMTP_HOST")
	setInt(&cfg.SMTPPort, "SMTP_PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setFloat(&cfg.Thresholds.UV, "UV_THRESHOLD")
	setFloat(&cfg.Thresholds.Smoke, "SMOKE_THRESHOLD")
	setFloat(&cfg.Thresholds.Tilt, "TILT_THRESHOLD")
	setDuration(&cfg.DBTimeout, "DB_TIMEOUT")
	setDuration(&cfg.SMTPTimeout, "SMTP_TIMEOUT")

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
