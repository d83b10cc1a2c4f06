// Package mailer renders and delivers transactional emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/pkg/circuitbreaker"
)

// Message is a rendered email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends messages through an SMTP relay guarded by a circuit breaker
type SMTPMailer struct {
	cfg     config.MailConfig
	breaker *circuitbreaker.CircuitBreaker
	send    sendFunc
	logger  *zap.Logger
}

// NewSMTP creates an SMTP mailer
func NewSMTP(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	cbConfig := circuitbreaker.Config{
		Name:                "smtp",
		MaxFailures:         3,
		Timeout:             time.Minute,
		MaxHalfOpenRequests: 1,
		OnStateChange:       circuitbreaker.LogStateChanges(logger),
	}

	return &SMTPMailer{
		cfg:     cfg,
		breaker: circuitbreaker.New(cbConfig),
		send:    smtp.SendMail,
		logger:  logger,
	}
}

// Send delivers msg. It fails fast while the relay is considered down.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	return m.breaker.Execute(ctx, func() error {
		addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

		var auth smtp.Auth
		if m.cfg.Username != "" {
			auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		}

		if err := m.send(addr, auth, envelopeAddress(m.cfg.From), []string{msg.To}, m.format(msg)); err != nil {
			m.logger.Warn("failed to send email", zap.String("to", msg.To), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}

		m.logger.Debug("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	})
}

func (m *SMTPMailer) format(msg *Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// envelopeAddress extracts the bare address of "Name <addr>"
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}
