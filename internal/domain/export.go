package domain

import (
	"time"

	"github.com/google/uuid"
)

// Export is an asynchronous registrations export written to object storage
type Export struct {
	ID          uuid.UUID    `json:"id"`
	EventID     uuid.UUID    `json:"eventId"`
	RequestedBy *uuid.UUID   `json:"requestedBy,omitempty"`
	Status      ExportStatus `json:"status"`
	ObjectKey   string       `json:"-"`
	RowCount    int          `json:"rowCount"`
	Error       string       `json:"error,omitempty"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// ExportRow is one flattened registration line of a CSV export
type ExportRow struct {
	RegistrationID uuid.UUID  `bun:"registration_id"`
	FirstName      string     `bun:"first_name"`
	LastName       string     `bun:"last_name"`
	Email          string     `bun:"email"`
	Company        string     `bun:"company"`
	TicketName     string     `bun:"ticket_name"`
	Status         string     `bun:"status"`
	PaymentStatus  string     `bun:"payment_status"`
	Amount         int64      `bun:"amount"`
	Currency       string     `bun:"currency"`
	CreatedAt      time.Time  `bun:"created_at"`
	CheckedInAt    *time.Time `bun:"checked_in_at"`
}
