package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// TicketService manages ticket types
type TicketService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.TicketTypeInput) (*domain.TicketType, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.TicketTypeUpdateInput) (*domain.TicketType, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error)
}

// TicketsHandler handles ticket type endpoints
type TicketsHandler struct {
	tickets TicketService
}

// NewTicketsHandler creates a new tickets handler
func NewTicketsHandler(tickets TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /api/events/:eventId/tickets
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	p := parsePagination(c)
	tickets, total, err := h.tickets.List(c.Context(), currentEvent(c).ID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, tickets, total, p)
}

// Create handles POST /api/events/:eventId/tickets
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var input domain.TicketTypeInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	ticket, err := h.tickets.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// Get handles GET /api/events/:eventId/tickets/:ticketId
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "ticketId", "ticket type")
	if err != nil {
		return handleServiceError(c, err)
	}

	ticket, err := h.tickets.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(ticket)
}

// Update handles PUT /api/events/:eventId/tickets/:ticketId
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "ticketId", "ticket type")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.TicketTypeUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	ticket, err := h.tickets.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(ticket)
}

// Delete handles DELETE /api/events/:eventId/tickets/:ticketId
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "ticketId", "ticket type")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.tickets.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
