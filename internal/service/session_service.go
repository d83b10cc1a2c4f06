package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// SessionRepository defines schedule session repository operations
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, filter *domain.SessionFilter, p pagination.Params) ([]domain.Session, int64, error)
	ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Session, error)
}

// SessionService manages the sessions of an event
type SessionService struct {
	sessionRepo SessionRepository
	trackRepo   TrackRepository
	speakerRepo SpeakerRepository
	schedule    ScheduleInvalidator
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo SessionRepository,
	trackRepo TrackRepository,
	speakerRepo SpeakerRepository,
	schedule ScheduleInvalidator,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		trackRepo:   trackRepo,
		speakerRepo: speakerRepo,
		schedule:    schedule,
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// checkReferences makes sure the track and speakers belong to the event
func (s *SessionService) checkReferences(ctx context.Context, eventID uuid.UUID, trackID *uuid.UUID, speakerIDs []uuid.UUID) error {
	if trackID != nil {
		if _, err := s.trackRepo.GetByID(ctx, eventID, *trackID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Unprocessable("track does not belong to this event")
			}
			return err
		}
	}

	if len(speakerIDs) > 0 {
		n, err := s.speakerRepo.CountInEvent(ctx, eventID, speakerIDs)
		if err != nil {
			return err
		}
		if n != len(speakerIDs) {
			return apperrors.Unprocessable("every speaker must belong to this event")
		}
	}

	return nil
}

// Create creates a session
func (s *SessionService) Create(ctx context.Context, eventID uuid.UUID, input *domain.SessionInput) (*domain.Session, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, apperrors.Validation("endTime must be after startTime")
	}

	speakerIDs := uniqueIDs(input.SpeakerIDs)
	if err := s.checkReferences(ctx, eventID, input.TrackID, speakerIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &domain.Session{
		ID:          uuid.New(),
		EventID:     eventID,
		TrackID:     input.TrackID,
		Title:       input.Title,
		Description: input.Description,
		Room:        input.Room,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		SpeakerIDs:  speakerIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.schedule.Invalidate(ctx, eventID)
	return sess, nil
}

// Get retrieves a session of an event
func (s *SessionService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Session, error) {
	return s.sessionRepo.GetByID(ctx, eventID, id)
}

// Update applies a partial update to a session
func (s *SessionService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.SessionUpdateInput) (*domain.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		sess.Title = *input.Title
	}
	if input.Description != nil {
		sess.Description = *input.Description
	}
	if input.Room != nil {
		sess.Room = *input.Room
	}
	if input.StartTime != nil {
		sess.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		sess.EndTime = *input.EndTime
	}

	var trackToCheck *uuid.UUID
	switch {
	case input.ClearTrack:
		sess.TrackID = nil
	case input.TrackID != nil:
		sess.TrackID = input.TrackID
		trackToCheck = input.TrackID
	}

	var speakersToCheck []uuid.UUID
	if input.SpeakerIDs != nil {
		sess.SpeakerIDs = uniqueIDs(*input.SpeakerIDs)
		speakersToCheck = sess.SpeakerIDs
	}

	if !sess.EndTime.After(sess.StartTime) {
		return nil, apperrors.Validation("endTime must be after startTime")
	}
	if err := s.checkReferences(ctx, eventID, trackToCheck, speakersToCheck); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}

	s.schedule.Invalidate(ctx, eventID)
	return sess, nil
}

// Delete deletes a session
func (s *SessionService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, eventID, id); err != nil {
		return err
	}
	s.schedule.Invalidate(ctx, eventID)
	return nil
}

// List lists sessions by start time, optionally by track or speaker
func (s *SessionService) List(ctx context.Context, filter *domain.SessionFilter, p pagination.Params) ([]domain.Session, int64, error) {
	return s.sessionRepo.List(ctx, filter, p)
}
