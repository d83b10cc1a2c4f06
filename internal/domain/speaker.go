package domain

import (
	"time"

	"github.com/google/uuid"
)

// Speaker presents one or more sessions of an event
type Speaker struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Company   string    `json:"company,omitempty"`
	Title     string    `json:"title,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SpeakerInput represents input for creating a speaker
type SpeakerInput struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio      string  `json:"bio,omitempty" validate:"max=5000"`
	Company  string  `json:"company,omitempty" validate:"max=200"`
	Title    string  `json:"title,omitempty" validate:"max=200"`
	PhotoURL string  `json:"photoUrl,omitempty" validate:"omitempty,url"`
}

// SpeakerUpdateInput represents input for updating a speaker
type SpeakerUpdateInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	PhotoURL *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
}
