// Package notify delivers best-effort alert emails. Delivery is attempted
// once per alert; the authoritative record of an alert is the persisted row,
// not the email, so callers treat failures as log-and-continue.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tiltwatch/internal/logger"
)

// Mailer sends a single plain-text alert message.
type Mailer interface {
	// SendAlert delivers one message to recipient. An empty recipient is a
	// no-op, not an error.
	SendAlert(ctx context.Context, recipient, subject, body string) error
}

// SMTPMailer sends mail over implicit TLS (port 465) with PLAIN auth
// against a fixed provider endpoint.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	log      zerolog.Logger
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// Timeout bounds the whole dial/auth/send sequence.
	Timeout time.Duration
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
		log:      logger.WithComponent("smtp"),
	}
}

// SendAlert connects, authenticates, and sends one message. The connection
// carries a deadline so a stalled provider cannot hold the request path
// beyond the configured timeout.
func (m *SMTPMailer) SendAlert(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return nil
	}

	addr := net.JoinHostPort(m.host, fmt.Sprintf("%d", m.port))
	dialer := &net.Dialer{Timeout: m.timeout}

	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(m.username, recipient, subject, body))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	if err := client.Quit(); err != nil {
		// Message already accepted; quit failures are not delivery failures.
		m.log.Debug().Err(err).Msg("smtp quit failed after send")
	}

	m.log.Info().Str("recipient", recipient).Msg("alert email sent")
	return nil
}

// buildMessage assembles an RFC 5322 plain-text message.
func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}

var _ Mailer = (*SMTPMailer)(nil)
