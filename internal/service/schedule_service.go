package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/metrics"
	"github.com/eventdesk/eventdesk/api/internal/schedule"
)

// ScheduleCache stores computed layouts per event
type ScheduleCache interface {
	GetJSON(ctx context.Context, owner, field string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, owner, field string, value interface{}) error
	Invalidate(ctx context.Context, owner string) error
}

// ScheduleInvalidator drops cached layouts of an event after a program change
type ScheduleInvalidator interface {
	Invalidate(ctx context.Context, eventID uuid.UUID)
}

// ScheduleService computes and caches the schedule grid of an event
type ScheduleService struct {
	sessionRepo SessionRepository
	trackRepo   TrackRepository
	cache       ScheduleCache
	defaults    schedule.Options
	logger      *zap.Logger
}

// NewScheduleService creates a new schedule service. cache may be nil.
func NewScheduleService(
	logger *zap.Logger,
	sessionRepo SessionRepository,
	trackRepo TrackRepository,
	cache ScheduleCache,
	cfg config.ScheduleConfig,
) *ScheduleService {
	return &ScheduleService{
		logger:      logger.Named("schedule"),
		sessionRepo: sessionRepo,
		trackRepo:   trackRepo,
		cache:       cache,
		defaults: schedule.Options{
			GridStart:  cfg.GridStartHour,
			GridEnd:    cfg.GridEndHour,
			HourHeight: cfg.HourHeightPx,
			MinHeight:  cfg.MinHeightPx,
		},
	}
}

// DefaultOptions returns the configured grid
func (s *ScheduleService) DefaultOptions() schedule.Options {
	return s.defaults
}

func cacheField(o schedule.Options) string {
	return fmt.Sprintf("%d:%d:%d:%d", o.GridStart, o.GridEnd, o.HourHeight, o.MinHeight)
}

// Get returns the laid out schedule of an event for the given grid
func (s *ScheduleService) Get(ctx context.Context, event *domain.Event, opts schedule.Options) (*schedule.Schedule, error) {
	if err := opts.Validate(); err != nil {
		return nil, apperrors.Validation("gridStart must be below gridEnd within 0-24, hourHeight must be positive")
	}

	owner := event.ID.String()
	field := cacheField(opts)

	if s.cache != nil {
		var cached schedule.Schedule
		hit, err := s.cache.GetJSON(ctx, owner, field, &cached)
		if err != nil {
			s.logger.Warn("schedule cache read failed", zap.String("event_id", owner), zap.Error(err))
		}
		metrics.RecordScheduleCache(hit)
		if hit {
			return &cached, nil
		}
	}

	sessions, err := s.sessionRepo.ListAll(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	tracks, err := s.trackRepo.ListAll(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	days, err := schedule.Layout(sessions, tracks, event.Location(), opts)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidGrid) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, err
	}

	result := &schedule.Schedule{
		EventID:  event.ID,
		Timezone: event.Location().String(),
		Options:  opts,
		Days:     days,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, owner, field, result); err != nil {
			s.logger.Warn("schedule cache write failed", zap.String("event_id", owner), zap.Error(err))
		}
	}

	return result, nil
}

// Invalidate drops every cached layout of an event
func (s *ScheduleService) Invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID.String()); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("event_id", eventID.String()), zap.Error(err))
	}
}
