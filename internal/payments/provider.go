// Package payments abstracts the payment services registrations are paid through.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Webhook statuses reported by providers
const (
	WebhookStatusPaid      = "paid"
	WebhookStatusFailed    = "failed"
	WebhookStatusCancelled = "cancelled"
)

// Provider creates checkouts and interprets webhook notifications of a payment service
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req *CheckoutRequest) (*Checkout, error)
	// ParseWebhook verifies signature against body and decodes the notification
	ParseWebhook(ctx context.Context, body []byte, signature string) (*domain.PaymentWebhookEvent, error)
}

// CheckoutRequest describes the amount a registration has to pay
type CheckoutRequest struct {
	PaymentID      uuid.UUID
	RegistrationID uuid.UUID
	Amount         int64
	Currency       string
	Description    string
}

// Checkout is where the attendee pays and how the provider refers to it
type Checkout struct {
	URL         string
	ProviderRef string
}

// NewProvider builds the provider selected by configuration
func NewProvider(cfg config.PaymentConfig) (Provider, error) {
	switch cfg.Provider {
	case "stub":
		return NewStub(cfg.WebhookSecret, cfg.CheckoutURL), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Provider)
	}
}

// Sign returns the hex HMAC-SHA256 of body keyed with secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the HMAC-SHA256 of body
func Verify(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
