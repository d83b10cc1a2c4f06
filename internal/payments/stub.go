package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/id"
)

// Stub is a provider without a real payment service behind it. Checkouts
// point at a local page, and webhooks are plain JSON signed with the
// shared secret in X-Signature.
type Stub struct {
	secret      string
	checkoutURL string
}

// NewStub creates a stub provider
func NewStub(secret, checkoutURL string) *Stub {
	return &Stub{secret: secret, checkoutURL: strings.TrimRight(checkoutURL, "/")}
}

// Name returns "stub"
func (p *Stub) Name() string { return "stub" }

// CreateCheckout issues an invoice id and the checkout link for it
func (p *Stub) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*Checkout, error) {
	token, err := id.NewToken(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice id: %w", err)
	}
	invoice := "inv_" + token

	q := url.Values{}
	q.Set("invoice", invoice)
	q.Set("amount", fmt.Sprintf("%d", req.Amount))
	q.Set("currency", req.Currency)

	return &Checkout{
		URL:         p.checkoutURL + "?" + q.Encode(),
		ProviderRef: invoice,
	}, nil
}

// ParseWebhook checks the signature and decodes {"invoiceId": ..., "status": ...}.
// A missing status means paid.
func (p *Stub) ParseWebhook(ctx context.Context, body []byte, signature string) (*domain.PaymentWebhookEvent, error) {
	if !Verify(p.secret, body, signature) {
		return nil, ErrInvalidSignature
	}

	var event domain.PaymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook: %w", err)
	}
	if event.ProviderRef == "" {
		return nil, fmt.Errorf("webhook without invoice id")
	}

	event.Status = strings.ToLower(strings.TrimSpace(event.Status))
	switch event.Status {
	case "":
		event.Status = WebhookStatusPaid
	case WebhookStatusPaid, WebhookStatusFailed, WebhookStatusCancelled:
	default:
		return nil, fmt.Errorf("unknown webhook status %q", event.Status)
	}

	return &event, nil
}
