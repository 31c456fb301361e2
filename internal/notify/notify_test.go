package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"tiltwatch/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("disabled")
	m.Run()
}

func TestSendAlertSkipsEmptyRecipient(t *testing.T) {
	// No reachable host: if the empty-recipient short circuit did not fire,
	// this would dial and fail.
	m := NewSMTPMailer(Config{Host: "smtp.invalid", Timeout: 100 * time.Millisecond})

	if err := m.SendAlert(context.Background(), "", "subject", "body"); err != nil {
		t.Fatalf("empty recipient must be a no-op, got %v", err)
	}
}

func TestSendAlertDialFailure(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "127.0.0.1", Port: 1, Timeout: 200 * time.Millisecond})

	err := m.SendAlert(context.Background(), "ops@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected a dial error against a closed port")
	}
	if !strings.Contains(err.Error(), "dial") {
		t.Fatalf("error = %v, want dial failure", err)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("sender@example.com", "ops@example.com", "Telemetry alert", "smoke is high")

	for _, want := range []string{
		"From: sender@example.com\r\n",
		"To: ops@example.com\r\n",
		"Subject: Telemetry alert\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"\r\n\r\nsmoke is high",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestDefaultsApplied(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com"})

	if m.port != 465 {
		t.Fatalf("port = %d, want 465", m.port)
	}
	if m.timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", m.timeout)
	}
}
