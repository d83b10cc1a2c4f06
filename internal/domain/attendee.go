package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a person attending an event. Email is unique per event.
type Attendee struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns first and last name joined
func (a *Attendee) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// AttendeeInput represents input for creating an attendee
type AttendeeInput struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Company   string `json:"company,omitempty" validate:"max=200"`
	JobTitle  string `json:"jobTitle,omitempty" validate:"max=200"`
}

// AttendeeUpdateInput represents input for updating an attendee
type AttendeeUpdateInput struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle  *string `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
}

// AttendeeFilter represents filter options for listing attendees
type AttendeeFilter struct {
	EventID uuid.UUID
	Search  string
}
