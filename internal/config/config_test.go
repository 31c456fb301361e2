package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Thresholds.UV != 8 || cfg.Thresholds.Smoke != 500 || cfg.Thresholds.Tilt != 45 {
		t.Fatalf("unexpected default thresholds: %+v", cfg.Thresholds)
	}
	if cfg.SMTPPort != 465 {
		t.Fatalf("SMTPPort = %d, want 465", cfg.SMTPPort)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://db.example.com/telemetry")
	t.Setenv("EMAIL_USER", "sender@example.com")
	t.Setenv("EMAIL_PASS", "secret")
	t.Setenv("UV_THRESHOLD", "6.5")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("DB_TIMEOUT", "2s")

	cfg := FromEnv()

	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "postgres://db.example.com/telemetry" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.EmailUser != "sender@example.com" || cfg.EmailPass != "secret" {
		t.Fatalf("email credentials not read: %q / %q", cfg.EmailUser, cfg.EmailPass)
	}
	if cfg.Thresholds.UV != 6.5 {
		t.Fatalf("UV threshold = %v, want 6.5", cfg.Thresholds.UV)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if cfg.DBTimeout != 2*time.Second {
		t.Fatalf("DBTimeout = %v, want 2s", cfg.DBTimeout)
	}
	// Untouched values keep their defaults.
	if cfg.Thresholds.Smoke != 500 {
		t.Fatalf("Smoke threshold = %v, want default 500", cfg.Thresholds.Smoke)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("UV_THRESHOLD", "not-a-number")
	t.Setenv("SMTP_PORT", "sixty")
	t.Setenv("DB_TIMEOUT", "-5s")

	cfg := FromEnv()

	if cfg.Thresholds.UV != 8 {
		t.Fatalf("UV threshold = %v, want default 8", cfg.Thresholds.UV)
	}
	if cfg.SMTPPort != 465 {
		t.Fatalf("SMTPPort = %d, want default 465", cfg.SMTPPort)
	}
	if cfg.DBTimeout != 5*time.Second {
		t.Fatalf("DBTimeout = %v, want default 5s", cfg.DBTimeout)
	}
}
