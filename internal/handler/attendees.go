package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// AttendeeService manages the attendees of an event
type AttendeeService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.AttendeeInput) (*domain.Attendee, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AttendeeUpdateInput) (*domain.Attendee, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Attendee, int64, error)
}

// AttendeesHandler handles attendee endpoints
type AttendeesHandler struct {
	attendees AttendeeService
}

// NewAttendeesHandler creates a new attendees handler
func NewAttendeesHandler(attendees AttendeeService) *AttendeesHandler {
	return &AttendeesHandler{attendees: attendees}
}

// List handles GET /api/events/:eventId/attendees
func (h *AttendeesHandler) List(c *fiber.Ctx) error {
	var q dto.SearchQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	p := parsePagination(c)
	attendees, total, err := h.attendees.List(c.Context(), currentEvent(c).ID, q.Q, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, attendees, total, p)
}

// Create handles POST /api/events/:eventId/attendees
func (h *AttendeesHandler) Create(c *fiber.Ctx) error {
	var input domain.AttendeeInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	attendee, err := h.attendees.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attendee)
}

// Get handles GET /api/events/:eventId/attendees/:attendeeId
func (h *AttendeesHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "attendeeId", "attendee")
	if err != nil {
		return handleServiceError(c, err)
	}

	attendee, err := h.attendees.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(attendee)
}

// Update handles PUT /api/events/:eventId/attendees/:attendeeId
func (h *AttendeesHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "attendeeId", "attendee")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.AttendeeUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	attendee, err := h.attendees.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(attendee)
}

// Delete handles DELETE /api/events/:eventId/attendees/:attendeeId
func (h *AttendeesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "attendeeId", "attendee")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.attendees.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
