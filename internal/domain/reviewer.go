package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reviewer is an organization member assigned to review an event,
// optionally restricted to one track
type Reviewer struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"eventId"`
	UserID    uuid.UUID  `json:"userId"`
	TrackID   *uuid.UUID `json:"trackId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ReviewerInput represents input for assigning a reviewer
type ReviewerInput struct {
	UserID  uuid.UUID  `json:"userId" validate:"required"`
	TrackID *uuid.UUID `json:"trackId,omitempty"`
}
