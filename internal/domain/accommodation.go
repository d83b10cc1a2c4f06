package domain

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is a partner hotel for an event
type Hotel struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomTypes []RoomType `json:"roomTypes,omitempty"`
}

// HotelInput represents input for creating a hotel
type HotelInput struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
	Notes   string `json:"notes,omitempty" validate:"max=2000"`
}

// HotelUpdateInput represents input for updating a hotel
type HotelUpdateInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Website *string `json:"website,omitempty" validate:"omitempty,url"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// RoomType is a bookable kind of room in a hotel. PricePerNight is in minor units.
type RoomType struct {
	ID            uuid.UUID `json:"id"`
	HotelID       uuid.UUID `json:"hotelId"`
	Name          string    `json:"name"`
	PricePerNight int64     `json:"pricePerNight"`
	Currency      string    `json:"currency"`
	Capacity      int       `json:"capacity"`
	TotalRooms    int       `json:"totalRooms"`
	BookedRooms   int       `json:"bookedRooms"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasVacancy reports whether a room is left
func (r *RoomType) HasVacancy() bool {
	return r.BookedRooms < r.TotalRooms
}

// RoomTypeInput represents input for creating a room type
type RoomTypeInput struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	PricePerNight int64  `json:"pricePerNight" validate:"min=0"`
	Currency      string `json:"currency" validate:"required,currency"`
	Capacity      int    `json:"capacity" validate:"min=1"`
	TotalRooms    int    `json:"totalRooms" validate:"min=0"`
}

// RoomTypeUpdateInput represents input for updating a room type
type RoomTypeUpdateInput struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	PricePerNight *int64  `json:"pricePerNight,omitempty" validate:"omitempty,min=0"`
	Currency      *string `json:"currency,omitempty" validate:"omitempty,currency"`
	Capacity      *int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	TotalRooms    *int    `json:"totalRooms,omitempty" validate:"omitempty,min=0"`
}

// Accommodation is a hotel room booking tied to a registration
type Accommodation struct {
	ID             uuid.UUID           `json:"id"`
	EventID        uuid.UUID           `json:"eventId"`
	RegistrationID uuid.UUID           `json:"registrationId"`
	RoomTypeID     uuid.UUID           `json:"roomTypeId"`
	CheckIn        time.Time           `json:"checkIn"`
	CheckOut       time.Time           `json:"checkOut"`
	Guests         int                 `json:"guests"`
	Status         AccommodationStatus `json:"status"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// Nights returns the number of nights booked
func (a *Accommodation) Nights() int {
	return int(a.CheckOut.Sub(a.CheckIn).Hours() / 24)
}

// AccommodationInput represents input for creating an accommodation
type AccommodationInput struct {
	RegistrationID uuid.UUID `json:"registrationId" validate:"required"`
	RoomTypeID     uuid.UUID `json:"roomTypeId" validate:"required"`
	CheckIn        time.Time `json:"checkIn" validate:"required"`
	CheckOut       time.Time `json:"checkOut" validate:"required,gtfield=CheckIn"`
	Guests         int       `json:"guests" validate:"min=1"`
	Notes          string    `json:"notes,omitempty" validate:"max=2000"`
}

// AccommodationUpdateInput represents input for updating an accommodation
type AccommodationUpdateInput struct {
	CheckIn  *time.Time           `json:"checkIn,omitempty"`
	CheckOut *time.Time           `json:"checkOut,omitempty"`
	Guests   *int                 `json:"guests,omitempty" validate:"omitempty,min=1"`
	Status   *AccommodationStatus `json:"status,omitempty" validate:"omitempty,oneof=RESERVED CONFIRMED CANCELLED"`
	Notes    *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
