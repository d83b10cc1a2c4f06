package domain

import (
	"time"

	"github.com/google/uuid"
)

// Track is a thematic lane of an event's schedule
type Track struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TrackInput represents input for creating a track
type TrackInput struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Color     string `json:"color,omitempty" validate:"omitempty,hexcolor,len=7"`
	SortOrder int    `json:"sortOrder"`
}

// TrackUpdateInput represents input for updating a track
type TrackUpdateInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color     *string `json:"color,omitempty" validate:"omitempty,hexcolor,len=7"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

// Session is a scheduled talk
type Session struct {
	ID          uuid.UUID   `json:"id"`
	EventID     uuid.UUID   `json:"eventId"`
	TrackID     *uuid.UUID  `json:"trackId,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Room        string      `json:"room,omitempty"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     time.Time   `json:"endTime"`
	SpeakerIDs  []uuid.UUID `json:"speakerIds"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// SessionInput represents input for creating a session
type SessionInput struct {
	Title       string      `json:"title" validate:"required,min=1,max=300"`
	Description string      `json:"description,omitempty" validate:"max=10000"`
	Room        string      `json:"room,omitempty" validate:"max=100"`
	StartTime   time.Time   `json:"startTime" validate:"required"`
	EndTime     time.Time   `json:"endTime" validate:"required,gtfield=StartTime"`
	TrackID     *uuid.UUID  `json:"trackId,omitempty"`
	SpeakerIDs  []uuid.UUID `json:"speakerIds,omitempty"`
}

// SessionUpdateInput represents input for updating a session.
// ClearTrack removes the track assignment.
type SessionUpdateInput struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=10000"`
	Room        *string      `json:"room,omitempty" validate:"omitempty,max=100"`
	StartTime   *time.Time   `json:"startTime,omitempty"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	TrackID     *uuid.UUID   `json:"trackId,omitempty"`
	ClearTrack  bool         `json:"clearTrack,omitempty"`
	SpeakerIDs  *[]uuid.UUID `json:"speakerIds,omitempty"`
}

// SessionFilter represents filter options for listing sessions
type SessionFilter struct {
	EventID   uuid.UUID
	TrackID   *uuid.UUID
	SpeakerID *uuid.UUID
}
