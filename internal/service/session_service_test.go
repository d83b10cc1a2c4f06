package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
)

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	t.Run("deduplicates speakers and invalidates schedule", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		trackRepo := new(MockTrackRepository)
		speakerRepo := new(MockSpeakerRepository)
		invalidator := new(MockScheduleInvalidator)
		trackID := uuid.New()
		speakerID := uuid.New()

		trackRepo.On("GetByID", mock.Anything, eventID, trackID).Return(&domain.Track{ID: trackID, EventID: eventID}, nil)
		speakerRepo.On("CountInEvent", mock.Anything, eventID, []uuid.UUID{speakerID}).Return(1, nil)
		sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
		invalidator.On("Invalidate", mock.Anything, eventID).Return()

		sess, err := NewSessionService(sessionRepo, trackRepo, speakerRepo, invalidator).Create(ctx, eventID, &domain.SessionInput{
			Title:      "Go generics in practice",
			StartTime:  start,
			EndTime:    start.Add(45 * time.Minute),
			TrackID:    &trackID,
			SpeakerIDs: []uuid.UUID{speakerID, speakerID},
		})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{speakerID}, sess.SpeakerIDs)
		invalidator.AssertExpectations(t)
	})

	t.Run("track of another event", func(t *testing.T) {
		trackRepo := new(MockTrackRepository)
		invalidator := new(MockScheduleInvalidator)
		trackID := uuid.New()
		trackRepo.On("GetByID", mock.Anything, eventID, trackID).Return(nil, apperrors.NotFound("track"))

		_, err := NewSessionService(new(MockSessionRepository), trackRepo, new(MockSpeakerRepository), invalidator).Create(ctx, eventID, &domain.SessionInput{
			Title: "Talk", StartTime: start, EndTime: start.Add(time.Hour), TrackID: &trackID,
		})

		assert.True(t, apperrors.IsUnprocessable(err))
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("speaker of another event", func(t *testing.T) {
		speakerRepo := new(MockSpeakerRepository)
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		speakerRepo.On("CountInEvent", mock.Anything, eventID, ids).Return(1, nil)

		_, err := NewSessionService(new(MockSessionRepository), new(MockTrackRepository), speakerRepo, new(MockScheduleInvalidator)).Create(ctx, eventID, &domain.SessionInput{
			Title: "Panel", StartTime: start, EndTime: start.Add(time.Hour), SpeakerIDs: ids,
		})

		assert.True(t, apperrors.IsUnprocessable(err))
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewSessionService(nil, nil, nil, nil).Create(ctx, eventID, &domain.SessionInput{
			Title: "Backwards", StartTime: start, EndTime: start.Add(-time.Minute),
		})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSessionService_Update(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	trackID := uuid.New()

	t.Run("clears track", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		invalidator := new(MockScheduleInvalidator)
		sess := &domain.Session{ID: uuid.New(), EventID: eventID, TrackID: &trackID, StartTime: start, EndTime: start.Add(time.Hour)}
		sessionRepo.On("GetByID", mock.Anything, eventID, sess.ID).Return(sess, nil)
		sessionRepo.On("Update", mock.Anything, sess).Return(nil)
		invalidator.On("Invalidate", mock.Anything, eventID).Return()

		got, err := NewSessionService(sessionRepo, new(MockTrackRepository), new(MockSpeakerRepository), invalidator).Update(ctx, eventID, sess.ID, &domain.SessionUpdateInput{ClearTrack: true})

		require.NoError(t, err)
		assert.Nil(t, got.TrackID)
		invalidator.AssertExpectations(t)
	})

	t.Run("moving end before start", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sess := &domain.Session{ID: uuid.New(), EventID: eventID, StartTime: start, EndTime: start.Add(time.Hour)}
		sessionRepo.On("GetByID", mock.Anything, eventID, sess.ID).Return(sess, nil)

		end := start.Add(-time.Hour)
		_, err := NewSessionService(sessionRepo, nil, nil, nil).Update(ctx, eventID, sess.ID, &domain.SessionUpdateInput{EndTime: &end})

		assert.True(t, apperrors.IsValidation(err))
		sessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestSessionService_Delete(t *testing.T) {
	eventID := uuid.New()
	id := uuid.New()
	sessionRepo := new(MockSessionRepository)
	invalidator := new(MockScheduleInvalidator)
	sessionRepo.On("Delete", mock.Anything, eventID, id).Return(nil)
	invalidator.On("Invalidate", mock.Anything, eventID).Return()

	require.NoError(t, NewSessionService(sessionRepo, nil, nil, invalidator).Delete(context.Background(), eventID, id))
	invalidator.AssertExpectations(t)
}
