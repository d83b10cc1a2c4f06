package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one payment attempt for a registration
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	EventID        uuid.UUID     `json:"eventId"`
	RegistrationID uuid.UUID     `json:"registrationId"`
	Provider       string        `json:"provider"`
	ProviderRef    string        `json:"providerRef"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	Status         PaymentStatus `json:"status"`
	CheckoutURL    string        `json:"checkoutUrl,omitempty"`
	PaidAt         *time.Time    `json:"paidAt,omitempty"`
	RefundedAt     *time.Time    `json:"refundedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PaymentUpdateInput lets organizers record manual payment state
type PaymentUpdateInput struct {
	Status PaymentStatus `json:"status" validate:"required,paystatus"`
}

// PaymentWebhookEvent is a provider notification after signature verification
type PaymentWebhookEvent struct {
	ProviderRef string `json:"invoiceId"`
	// Status is one of "paid", "failed" or "cancelled"
	Status string `json:"status"`
}
