package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a conference or meetup owned by an organization
type Event struct {
	ID                   uuid.UUID   `json:"id"`
	OrganizationID       uuid.UUID   `json:"organizationId"`
	Name                 string      `json:"name"`
	Slug                 string      `json:"slug"`
	Description          string      `json:"description"`
	Venue                string      `json:"venue"`
	Timezone             string      `json:"timezone"`
	StartDate            time.Time   `json:"startDate"`
	EndDate              time.Time   `json:"endDate"`
	Status               EventStatus `json:"status"`
	Capacity             int         `json:"capacity"`
	PaymentWindowMinutes int         `json:"paymentWindowMinutes"`
	CreatedBy            *uuid.UUID  `json:"createdBy,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Location returns the event's time zone, UTC if it cannot be loaded
func (e *Event) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PaymentWindow returns how long a pending paid registration is held
func (e *Event) PaymentWindow(fallback time.Duration) time.Duration {
	if e.PaymentWindowMinutes > 0 {
		return time.Duration(e.PaymentWindowMinutes) * time.Minute
	}
	return fallback
}

// EventInput represents input for creating an event
type EventInput struct {
	Name                 string      `json:"name" validate:"required,min=1,max=200"`
	Slug                 string      `json:"slug,omitempty" validate:"omitempty,min=2,max=100"`
	Description          string      `json:"description,omitempty" validate:"max=10000"`
	Venue                string      `json:"venue,omitempty" validate:"max=300"`
	Timezone             string      `json:"timezone" validate:"required,timezone"`
	StartDate            time.Time   `json:"startDate" validate:"required"`
	EndDate              time.Time   `json:"endDate" validate:"required,gtefield=StartDate"`
	Status               EventStatus `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Capacity             int         `json:"capacity" validate:"min=0"`
	PaymentWindowMinutes int         `json:"paymentWindowMinutes" validate:"min=0,max=10080"`
}

// EventUpdateInput represents input for updating an event
type EventUpdateInput struct {
	Name                 *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description          *string      `json:"description,omitempty" validate:"omitempty,max=10000"`
	Venue                *string      `json:"venue,omitempty" validate:"omitempty,max=300"`
	Timezone             *string      `json:"timezone,omitempty" validate:"omitempty,timezone"`
	StartDate            *time.Time   `json:"startDate,omitempty"`
	EndDate              *time.Time   `json:"endDate,omitempty"`
	Status               *EventStatus `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Capacity             *int         `json:"capacity,omitempty" validate:"omitempty,min=0"`
	PaymentWindowMinutes *int         `json:"paymentWindowMinutes,omitempty" validate:"omitempty,min=0,max=10080"`
}

// EventFilter represents filter options for listing events
type EventFilter struct {
	OrganizationID uuid.UUID
	Status         *EventStatus
	Search         string
	// ReviewerUserID limits the list to events the user is assigned to review
	ReviewerUserID *uuid.UUID
}

// EventStats is the reporting summary of an event
type EventStats struct {
	EventID               uuid.UUID                    `json:"eventId"`
	RegistrationsByStatus map[RegistrationStatus]int64 `json:"registrationsByStatus"`
	PaymentsByStatus      map[PaymentStatus]int64      `json:"paymentsByStatus"`
	Tickets               []TicketStats                `json:"tickets"`
	RevenueByCurrency     map[string]int64             `json:"revenueByCurrency"`
	TotalRegistrations    int64                        `json:"totalRegistrations"`
	CheckedIn             int64                        `json:"checkedIn"`
	CheckInRatio          float64                      `json:"checkInRatio"`
}

// TicketStats is sold versus quantity for one ticket type
type TicketStats struct {
	TicketTypeID uuid.UUID `json:"ticketTypeId"`
	Name         string    `json:"name"`
	Sold         int       `json:"sold"`
	Quantity     int       `json:"quantity"`
}
