package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// SpeakerRepository defines speaker repository operations
type SpeakerRepository interface {
	Create(ctx context.Context, s *domain.Speaker) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Speaker, error)
	Update(ctx context.Context, s *domain.Speaker) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Speaker, int64, error)
	CountInEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (int, error)
}

// SpeakerService manages speakers
type SpeakerService struct {
	speakerRepo SpeakerRepository
	schedule    ScheduleInvalidator
}

// NewSpeakerService creates a new speaker service
func NewSpeakerService(speakerRepo SpeakerRepository, schedule ScheduleInvalidator) *SpeakerService {
	return &SpeakerService{speakerRepo: speakerRepo, schedule: schedule}
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}

// Create creates a speaker
func (s *SpeakerService) Create(ctx context.Context, eventID uuid.UUID, input *domain.SpeakerInput) (*domain.Speaker, error) {
	now := time.Now()
	sp := &domain.Speaker{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      input.Name,
		Email:     normalizeEmail(input.Email),
		Bio:       input.Bio,
		Company:   input.Company,
		Title:     input.Title,
		PhotoURL:  input.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.speakerRepo.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Get retrieves a speaker of an event
func (s *SpeakerService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Speaker, error) {
	return s.speakerRepo.GetByID(ctx, eventID, id)
}

// Update applies a partial update to a speaker
func (s *SpeakerService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.SpeakerUpdateInput) (*domain.Speaker, error) {
	sp, err := s.speakerRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		sp.Name = *input.Name
	}
	if input.Email != nil {
		sp.Email = normalizeEmail(input.Email)
	}
	if input.Bio != nil {
		sp.Bio = *input.Bio
	}
	if input.Company != nil {
		sp.Company = *input.Company
	}
	if input.Title != nil {
		sp.Title = *input.Title
	}
	if input.PhotoURL != nil {
		sp.PhotoURL = *input.PhotoURL
	}
	sp.UpdatedAt = time.Now()

	if err := s.speakerRepo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Delete deletes a speaker, unlinking them from their sessions
func (s *SpeakerService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	if err := s.speakerRepo.Delete(ctx, eventID, id); err != nil {
		return err
	}
	s.schedule.Invalidate(ctx, eventID)
	return nil
}

// List lists speakers, optionally searching name, email and company
func (s *SpeakerService) List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Speaker, int64, error) {
	return s.speakerRepo.List(ctx, eventID, strings.TrimSpace(search), p)
}
