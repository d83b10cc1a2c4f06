package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// EventService is the part of service.EventService the handler uses
type EventService interface {
	Access(ctx context.Context, orgID, eventID uuid.UUID, role domain.OrgRole, userID *uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, filter *domain.EventFilter, role domain.OrgRole, userID *uuid.UUID, p pagination.Params) ([]domain.Event, int64, error)
	Create(ctx context.Context, orgID uuid.UUID, input *domain.EventInput, actor domain.Actor) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event, input *domain.EventUpdateInput) (*domain.Event, error)
	Delete(ctx context.Context, event *domain.Event, actor domain.Actor) error
	Stats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error)
}

// EventsHandler handles event endpoints
type EventsHandler struct {
	events EventService
	logger *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(events EventService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

// LoadEvent resolves :eventId inside the caller's organization and stores it
// for the handlers below it. Reviewers only reach events they are assigned to.
func (h *EventsHandler) LoadEvent(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	eventID, err := parseUUIDParam(c, "eventId", "event")
	if err != nil {
		return handleServiceError(c, err)
	}

	event, err := h.events.Access(c.Context(), orgID, eventID, callerRole(c), callerUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Locals(eventLocalKey, event)
	return c.Next()
}

// List handles GET /api/events
func (h *EventsHandler) List(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var q dto.EventQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	filter := &domain.EventFilter{OrganizationID: orgID, Search: q.Q}
	if q.Status != "" {
		status := domain.EventStatus(q.Status)
		filter.Status = &status
	}

	p := parsePagination(c)
	events, total, err := h.events.List(c.Context(), filter, callerRole(c), callerUserID(c), p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, events, total, p)
}

// Create handles POST /api/events
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.EventInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	event, err := h.events.Create(c.Context(), orgID, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// Get handles GET /api/events/:eventId
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(currentEvent(c))
}

// Update handles PUT /api/events/:eventId
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	var input domain.EventUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	event, err := h.events.Update(c.Context(), currentEvent(c), &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(event)
}

// Delete handles DELETE /api/events/:eventId
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	if err := h.events.Delete(c.Context(), currentEvent(c), middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats handles GET /api/events/:eventId/stats
func (h *EventsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.events.Stats(c.Context(), currentEvent(c).ID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(stats)
}

// callerRole is the member role, or ORGANIZER level access for API keys
// whose reach is bounded by scopes instead.
func callerRole(c *fiber.Ctx) domain.OrgRole {
	if role, ok := middleware.GetRole(c); ok {
		return role
	}
	return domain.OrgRoleOrganizer
}
