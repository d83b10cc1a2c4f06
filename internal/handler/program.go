package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/schedule"
)

// SpeakerService manages speakers
type SpeakerService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.SpeakerInput) (*domain.Speaker, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Speaker, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.SpeakerUpdateInput) (*domain.Speaker, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Speaker, int64, error)
}

// TrackService manages tracks
type TrackService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.TrackInput) (*domain.Track, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.TrackUpdateInput) (*domain.Track, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Track, int64, error)
}

// SessionService manages sessions
type SessionService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.SessionInput) (*domain.Session, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Session, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.SessionUpdateInput) (*domain.Session, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, filter *domain.SessionFilter, p pagination.Params) ([]domain.Session, int64, error)
}

// ScheduleService lays out the sessions of an event
type ScheduleService interface {
	DefaultOptions() schedule.Options
	Get(ctx context.Context, event *domain.Event, opts schedule.Options) (*schedule.Schedule, error)
}

// ProgramHandler handles speaker, track, session and schedule endpoints
type ProgramHandler struct {
	speakers SpeakerService
	tracks   TrackService
	sessions SessionService
	schedule ScheduleService
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(speakers SpeakerService, tracks TrackService, sessions SessionService, sched ScheduleService) *ProgramHandler {
	return &ProgramHandler{
		speakers: speakers,
		tracks:   tracks,
		sessions: sessions,
		schedule: sched,
	}
}

// ListSpeakers handles GET /api/events/:eventId/speakers
func (h *ProgramHandler) ListSpeakers(c *fiber.Ctx) error {
	var q dto.SearchQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	p := parsePagination(c)
	speakers, total, err := h.speakers.List(c.Context(), currentEvent(c).ID, q.Q, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, speakers, total, p)
}

// CreateSpeaker handles POST /api/events/:eventId/speakers
func (h *ProgramHandler) CreateSpeaker(c *fiber.Ctx) error {
	var input domain.SpeakerInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	speaker, err := h.speakers.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(speaker)
}

// GetSpeaker handles GET /api/events/:eventId/speakers/:speakerId
func (h *ProgramHandler) GetSpeaker(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "speakerId", "speaker")
	if err != nil {
		return handleServiceError(c, err)
	}

	speaker, err := h.speakers.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(speaker)
}

// UpdateSpeaker handles PUT /api/events/:eventId/speakers/:speakerId
func (h *ProgramHandler) UpdateSpeaker(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "speakerId", "speaker")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.SpeakerUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	speaker, err := h.speakers.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(speaker)
}

// DeleteSpeaker handles DELETE /api/events/:eventId/speakers/:speakerId
func (h *ProgramHandler) DeleteSpeaker(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "speakerId", "speaker")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.speakers.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTracks handles GET /api/events/:eventId/tracks
func (h *ProgramHandler) ListTracks(c *fiber.Ctx) error {
	p := parsePagination(c)
	tracks, total, err := h.tracks.List(c.Context(), currentEvent(c).ID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, tracks, total, p)
}

// CreateTrack handles POST /api/events/:eventId/tracks
func (h *ProgramHandler) CreateTrack(c *fiber.Ctx) error {
	var input domain.TrackInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	track, err := h.tracks.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(track)
}

// UpdateTrack handles PUT /api/events/:eventId/tracks/:trackId
func (h *ProgramHandler) UpdateTrack(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "trackId", "track")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.TrackUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	track, err := h.tracks.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(track)
}

// DeleteTrack handles DELETE /api/events/:eventId/tracks/:trackId
func (h *ProgramHandler) DeleteTrack(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "trackId", "track")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.tracks.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSessions handles GET /api/events/:eventId/sessions
func (h *ProgramHandler) ListSessions(c *fiber.Ctx) error {
	var q dto.SessionQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	filter := &domain.SessionFilter{
		EventID:   currentEvent(c).ID,
		TrackID:   parseOptionalUUID(q.TrackID),
		SpeakerID: parseOptionalUUID(q.SpeakerID),
	}

	p := parsePagination(c)
	sessions, total, err := h.sessions.List(c.Context(), filter, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, sessions, total, p)
}

// CreateSession handles POST /api/events/:eventId/sessions
func (h *ProgramHandler) CreateSession(c *fiber.Ctx) error {
	var input domain.SessionInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	session, err := h.sessions.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetSession handles GET /api/events/:eventId/sessions/:sessionId
func (h *ProgramHandler) GetSession(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "sessionId", "session")
	if err != nil {
		return handleServiceError(c, err)
	}

	session, err := h.sessions.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(session)
}

// UpdateSession handles PUT /api/events/:eventId/sessions/:sessionId
func (h *ProgramHandler) UpdateSession(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "sessionId", "session")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.SessionUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	session, err := h.sessions.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(session)
}

// DeleteSession handles DELETE /api/events/:eventId/sessions/:sessionId
func (h *ProgramHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "sessionId", "session")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.sessions.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Schedule handles GET /api/events/:eventId/schedule. Query parameters
// override the configured grid one by one.
func (h *ProgramHandler) Schedule(c *fiber.Ctx) error {
	opts := h.schedule.DefaultOptions()
	opts.GridStart = c.QueryInt("gridStart", opts.GridStart)
	opts.GridEnd = c.QueryInt("gridEnd", opts.GridEnd)
	opts.HourHeight = c.QueryInt("hourHeight", opts.HourHeight)
	opts.MinHeight = c.QueryInt("minHeight", opts.MinHeight)

	sched, err := h.schedule.Get(c.Context(), currentEvent(c), opts)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(sched)
}
