package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// TrackRepository defines track repository operations
type TrackRepository interface {
	Create(ctx context.Context, t *domain.Track) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Track, error)
	Update(ctx context.Context, t *domain.Track) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Track, int64, error)
	ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Track, error)
}

// TrackService manages the tracks of an event
type TrackService struct {
	trackRepo TrackRepository
	schedule  ScheduleInvalidator
}

// NewTrackService creates a new track service
func NewTrackService(trackRepo TrackRepository, schedule ScheduleInvalidator) *TrackService {
	return &TrackService{trackRepo: trackRepo, schedule: schedule}
}

// Create creates a track
func (s *TrackService) Create(ctx context.Context, eventID uuid.UUID, input *domain.TrackInput) (*domain.Track, error) {
	now := time.Now()
	t := &domain.Track{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      input.Name,
		Color:     strings.ToLower(input.Color),
		SortOrder: input.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.trackRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.schedule.Invalidate(ctx, eventID)
	return t, nil
}

// Update applies a partial update to a track
func (s *TrackService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.TrackUpdateInput) (*domain.Track, error) {
	t, err := s.trackRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Color != nil {
		t.Color = strings.ToLower(*input.Color)
	}
	if input.SortOrder != nil {
		t.SortOrder = *input.SortOrder
	}
	t.UpdatedAt = time.Now()

	if err := s.trackRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.schedule.Invalidate(ctx, eventID)
	return t, nil
}

// Delete deletes a track. Its sessions become untracked.
func (s *TrackService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	if err := s.trackRepo.Delete(ctx, eventID, id); err != nil {
		return err
	}
	s.schedule.Invalidate(ctx, eventID)
	return nil
}

// List lists the tracks of an event by sort order
func (s *TrackService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Track, int64, error) {
	return s.trackRepo.List(ctx, eventID, p)
}
