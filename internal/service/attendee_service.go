package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// AttendeeRepository defines attendee repository operations
type AttendeeRepository interface {
	Create(ctx context.Context, a *domain.Attendee) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error)
	GetByEmail(ctx context.Context, eventID uuid.UUID, email string) (*domain.Attendee, error)
	Update(ctx context.Context, a *domain.Attendee) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, filter *domain.AttendeeFilter, p pagination.Params) ([]domain.Attendee, int64, error)
}

// AttendeeService manages the attendees of an event
type AttendeeService struct {
	attendeeRepo AttendeeRepository
}

// NewAttendeeService creates a new attendee service
func NewAttendeeService(attendeeRepo AttendeeRepository) *AttendeeService {
	return &AttendeeService{attendeeRepo: attendeeRepo}
}

func newAttendee(eventID uuid.UUID, input *domain.AttendeeInput) *domain.Attendee {
	now := time.Now()
	return &domain.Attendee{
		ID:        uuid.New(),
		EventID:   eventID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     input.Phone,
		Company:   input.Company,
		JobTitle:  input.JobTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Create creates an attendee. The email must be unused within the event.
func (s *AttendeeService) Create(ctx context.Context, eventID uuid.UUID, input *domain.AttendeeInput) (*domain.Attendee, error) {
	a := newAttendee(eventID, input)
	if err := s.attendeeRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get retrieves an attendee of an event
func (s *AttendeeService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error) {
	return s.attendeeRepo.GetByID(ctx, eventID, id)
}

// Update applies a partial update to an attendee
func (s *AttendeeService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AttendeeUpdateInput) (*domain.Attendee, error) {
	a, err := s.attendeeRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		a.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		a.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		a.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		a.Phone = *input.Phone
	}
	if input.Company != nil {
		a.Company = *input.Company
	}
	if input.JobTitle != nil {
		a.JobTitle = *input.JobTitle
	}
	a.UpdatedAt = time.Now()

	if err := s.attendeeRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete deletes an attendee and their registrations
func (s *AttendeeService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return s.attendeeRepo.Delete(ctx, eventID, id)
}

// List lists attendees, optionally searching name, email and company
func (s *AttendeeService) List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Attendee, int64, error) {
	return s.attendeeRepo.List(ctx, &domain.AttendeeFilter{EventID: eventID, Search: strings.TrimSpace(search)}, p)
}
