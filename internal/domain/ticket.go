package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TicketType is a purchasable admission category. Price is in minor units.
type TicketType struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"eventId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Currency    string     `json:"currency"`
	Quantity    int        `json:"quantity"`
	Sold        int        `json:"sold"`
	SalesStart  *time.Time `json:"salesStart,omitempty"`
	SalesEnd    *time.Time `json:"salesEnd,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Available returns the number of seats left, never negative
func (t *TicketType) Available() int {
	if t.Sold >= t.Quantity {
		return 0
	}
	return t.Quantity - t.Sold
}

// SoldOut reports whether every seat is taken
func (t *TicketType) SoldOut() bool {
	return t.Sold >= t.Quantity
}

// IsFree reports whether the ticket costs nothing
func (t *TicketType) IsFree() bool {
	return t.Price == 0
}

// OnSale reports whether the ticket can be bought at now
func (t *TicketType) OnSale(now time.Time) bool {
	if !t.Active {
		return false
	}
	if t.SalesStart != nil && now.Before(*t.SalesStart) {
		return false
	}
	if t.SalesEnd != nil && !now.Before(*t.SalesEnd) {
		return false
	}
	return true
}

// MarshalJSON adds the derived available and soldOut fields
func (t TicketType) MarshalJSON() ([]byte, error) {
	type alias TicketType
	return json.Marshal(struct {
		alias
		Available int  `json:"available"`
		SoldOut   bool `json:"soldOut"`
	}{
		alias:     alias(t),
		Available: t.Available(),
		SoldOut:   t.SoldOut(),
	})
}

// TicketTypeInput represents input for creating a ticket type
type TicketTypeInput struct {
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	Price       int64      `json:"price" validate:"min=0"`
	Currency    string     `json:"currency" validate:"required,currency"`
	Quantity    int        `json:"quantity" validate:"min=0"`
	SalesStart  *time.Time `json:"salesStart,omitempty"`
	SalesEnd    *time.Time `json:"salesEnd,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

// TicketTypeUpdateInput represents input for updating a ticket type
type TicketTypeUpdateInput struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *int64     `json:"price,omitempty" validate:"omitempty,min=0"`
	Currency    *string    `json:"currency,omitempty" validate:"omitempty,currency"`
	Quantity    *int       `json:"quantity,omitempty" validate:"omitempty,min=0"`
	SalesStart  *time.Time `json:"salesStart,omitempty"`
	SalesEnd    *time.Time `json:"salesEnd,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}
