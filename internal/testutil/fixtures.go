package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// NewTestOrganization creates a test organization with default values.
func NewTestOrganization() *domain.Organization {
	return &domain.Organization{
		ID:        uuid.New(),
		Name:      "Test Org",
		Slug:      "test-org",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestUser creates a test user with default values.
func NewTestUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "test@example.com",
		Name:      "Test User",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestAPIKey creates a test API key with the given scopes.
func NewTestAPIKey(orgID uuid.UUID, scopes ...string) *domain.APIKey {
	return &domain.APIKey{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "test-key",
		PublicID:       "evk_test",
		SecretPreview:  "abcd",
		Scopes:         scopes,
		CreatedAt:      time.Now(),
	}
}

// NewTestEvent creates a published test event starting in a week.
func NewTestEvent(orgID uuid.UUID) *domain.Event {
	start := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	return &domain.Event{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "GopherCon",
		Slug:           "gophercon",
		Timezone:       "Europe/Berlin",
		StartDate:      start,
		EndDate:        start.Add(48 * time.Hour),
		Status:         domain.EventStatusPublished,
		Capacity:       500,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// NewTestTicketType creates an active paid ticket type.
func NewTestTicketType(eventID uuid.UUID) *domain.TicketType {
	return &domain.TicketType{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      "General Admission",
		Price:     9900,
		Currency:  "EUR",
		Quantity:  100,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestAttendee creates a test attendee with default values.
func NewTestAttendee(eventID uuid.UUID) *domain.Attendee {
	return &domain.Attendee{
		ID:        uuid.New(),
		EventID:   eventID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestRegistration creates a pending registration awaiting payment.
func NewTestRegistration(eventID, attendeeID, ticketTypeID uuid.UUID) *domain.Registration {
	expires := time.Now().Add(30 * time.Minute)
	return &domain.Registration{
		ID:            uuid.New(),
		EventID:       eventID,
		AttendeeID:    attendeeID,
		TicketTypeID:  ticketTypeID,
		Status:        domain.RegistrationStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Amount:        9900,
		Currency:      "EUR",
		ExpiresAt:     &expires,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}
