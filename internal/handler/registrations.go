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

// RegistrationService is the part of service.RegistrationService the handler uses
type RegistrationService interface {
	Create(ctx context.Context, event *domain.Event, input *domain.RegistrationInput, actor domain.Actor) (*domain.Registration, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error)
	List(ctx context.Context, filter *domain.RegistrationFilter, p pagination.Params) ([]domain.Registration, int64, error)
	Update(ctx context.Context, event *domain.Event, id uuid.UUID, input *domain.RegistrationUpdateInput, actor domain.Actor) (*domain.Registration, error)
	CheckIn(ctx context.Context, event *domain.Event, id uuid.UUID, actor domain.Actor) (*domain.Registration, error)
	Delete(ctx context.Context, event *domain.Event, id uuid.UUID, actor domain.Actor) error
}

// RegistrationsHandler handles registration endpoints
type RegistrationsHandler struct {
	registrations RegistrationService
	logger        *zap.Logger
}

// NewRegistrationsHandler creates a new registrations handler
func NewRegistrationsHandler(registrations RegistrationService, logger *zap.Logger) *RegistrationsHandler {
	return &RegistrationsHandler{
		registrations: registrations,
		logger:        logger,
	}
}

// List handles GET /api/events/:eventId/registrations
func (h *RegistrationsHandler) List(c *fiber.Ctx) error {
	var q dto.RegistrationQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	filter := &domain.RegistrationFilter{
		EventID:      currentEvent(c).ID,
		TicketTypeID: parseOptionalUUID(q.TicketTypeID),
		Search:       q.Q,
	}
	if q.Status != "" {
		status := domain.RegistrationStatus(q.Status)
		filter.Status = &status
	}
	if q.PaymentStatus != "" {
		ps := domain.PaymentStatus(q.PaymentStatus)
		filter.PaymentStatus = &ps
	}

	p := parsePagination(c)
	regs, total, err := h.registrations.List(c.Context(), filter, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, regs, total, p)
}

// Create handles POST /api/events/:eventId/registrations. A sold out ticket
// yields a WAITLISTED registration, not an error.
func (h *RegistrationsHandler) Create(c *fiber.Ctx) error {
	var input domain.RegistrationInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	reg, err := h.registrations.Create(c.Context(), currentEvent(c), &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reg)
}

// Get handles GET /api/events/:eventId/registrations/:id
func (h *RegistrationsHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	reg, err := h.registrations.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(reg)
}

// Update handles PUT /api/events/:eventId/registrations/:id
func (h *RegistrationsHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.RegistrationUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	reg, err := h.registrations.Update(c.Context(), currentEvent(c), id, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(reg)
}

// CheckIn handles POST /api/events/:eventId/registrations/:id/check-in
func (h *RegistrationsHandler) CheckIn(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	reg, err := h.registrations.CheckIn(c.Context(), currentEvent(c), id, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(reg)
}

// Delete handles DELETE /api/events/:eventId/registrations/:id
func (h *RegistrationsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.registrations.Delete(c.Context(), currentEvent(c), id, middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
