package domain

import (
	"time"

	"github.com/google/uuid"
)

// Registration is an attendee's signup against a ticket type for an event
type Registration struct {
	ID            uuid.UUID          `json:"id"`
	EventID       uuid.UUID          `json:"eventId"`
	AttendeeID    uuid.UUID          `json:"attendeeId"`
	TicketTypeID  uuid.UUID          `json:"ticketTypeId"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"paymentStatus"`
	// Amount is the ticket price at the time of registration, in minor units
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Notes       string     `json:"notes,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Attendee   *Attendee   `json:"attendee,omitempty"`
	TicketType *TicketType `json:"ticketType,omitempty"`
}

// registrationTransitions lists the allowed status changes. CANCELLED is terminal.
var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationStatusPending: {
		RegistrationStatusConfirmed,
		RegistrationStatusCancelled,
		RegistrationStatusWaitlisted,
	},
	RegistrationStatusWaitlisted: {
		RegistrationStatusPending,
		RegistrationStatusConfirmed,
		RegistrationStatusCancelled,
	},
	RegistrationStatusConfirmed: {
		RegistrationStatusCheckedIn,
		RegistrationStatusCancelled,
	},
	RegistrationStatusCheckedIn: {
		RegistrationStatusConfirmed,
	},
}

// CanTransition reports whether a registration may move from one status to another
func CanTransition(from, to RegistrationStatus) bool {
	for _, s := range registrationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsPaymentOverdue reports whether a pending paid registration has passed its payment deadline
func (r *Registration) IsPaymentOverdue(now time.Time) bool {
	return r.Status == RegistrationStatusPending &&
		r.PaymentStatus != PaymentStatusPaid &&
		r.ExpiresAt != nil &&
		!now.Before(*r.ExpiresAt)
}

// RegistrationInput represents input for creating a registration. Either
// AttendeeID or Attendee must be set.
type RegistrationInput struct {
	AttendeeID   *uuid.UUID     `json:"attendeeId,omitempty" validate:"required_without=Attendee"`
	Attendee     *AttendeeInput `json:"attendee,omitempty" validate:"required_without=AttendeeID"`
	TicketTypeID uuid.UUID      `json:"ticketTypeId" validate:"required"`
	Notes        string         `json:"notes,omitempty" validate:"max=2000"`
}

// RegistrationUpdateInput represents input for updating a registration
type RegistrationUpdateInput struct {
	Status *RegistrationStatus `json:"status,omitempty" validate:"omitempty,regstatus"`
	Notes  *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// RegistrationFilter represents filter options for listing registrations
type RegistrationFilter struct {
	EventID       uuid.UUID
	Status        *RegistrationStatus
	PaymentStatus *PaymentStatus
	TicketTypeID  *uuid.UUID
	Search        string
}

// RegistrationChange is published to live subscribers when a registration changes
type RegistrationChange struct {
	Type           string             `json:"type"`
	EventID        uuid.UUID          `json:"eventId"`
	RegistrationID uuid.UUID          `json:"registrationId"`
	Status         RegistrationStatus `json:"status"`
	PaymentStatus  PaymentStatus      `json:"paymentStatus"`
	At             time.Time          `json:"at"`
}

// Registration change types
const (
	ChangeCreated   = "registration.created"
	ChangeUpdated   = "registration.updated"
	ChangeCheckedIn = "registration.checked_in"
	ChangeDeleted   = "registration.deleted"
)
