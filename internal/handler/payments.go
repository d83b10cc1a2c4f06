package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
)

// HeaderSignature carries the HMAC-SHA256 of a webhook body
const HeaderSignature = "X-Signature"

// PaymentService is the part of service.PaymentService the handler uses
type PaymentService interface {
	List(ctx context.Context, eventID, registrationID uuid.UUID) ([]domain.Payment, error)
	Start(ctx context.Context, event *domain.Event, registrationID uuid.UUID) (*domain.Payment, error)
	HandleWebhook(ctx context.Context, provider string, body []byte, signature string) error
	Update(ctx context.Context, event *domain.Event, registrationID, paymentID uuid.UUID, input *domain.PaymentUpdateInput, actor domain.Actor) (*domain.Payment, error)
	Refund(ctx context.Context, event *domain.Event, registrationID, paymentID uuid.UUID, actor domain.Actor) (*domain.Payment, error)
}

// PaymentsHandler handles payment endpoints and provider webhooks
type PaymentsHandler struct {
	payments PaymentService
	logger   *zap.Logger
}

// NewPaymentsHandler creates a new payments handler
func NewPaymentsHandler(payments PaymentService, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		payments: payments,
		logger:   logger,
	}
}

// List handles GET /api/events/:eventId/registrations/:id/payments
func (h *PaymentsHandler) List(c *fiber.Ctx) error {
	regID, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	payments, err := h.payments.List(c.Context(), currentEvent(c).ID, regID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return c.JSON(fiber.Map{"data": payments})
}

// Start handles POST /api/events/:eventId/registrations/:id/payments
func (h *PaymentsHandler) Start(c *fiber.Ctx) error {
	regID, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return handleServiceError(c, err)
	}

	payment, err := h.payments.Start(c.Context(), currentEvent(c), regID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// Update handles PUT /api/events/:eventId/registrations/:id/payments/:paymentId
func (h *PaymentsHandler) Update(c *fiber.Ctx) error {
	regID, paymentID, err := paymentParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.PaymentUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	payment, err := h.payments.Update(c.Context(), currentEvent(c), regID, paymentID, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(payment)
}

// Refund handles POST /api/events/:eventId/registrations/:id/payments/:paymentId/refund
func (h *PaymentsHandler) Refund(c *fiber.Ctx) error {
	regID, paymentID, err := paymentParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	payment, err := h.payments.Refund(c.Context(), currentEvent(c), regID, paymentID, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(payment)
}

// Webhook handles POST /api/payments/webhook/:provider. It is unauthenticated;
// the signature over the raw body is the only credential.
func (h *PaymentsHandler) Webhook(c *fiber.Ctx) error {
	provider := c.Params("provider")
	signature := c.Get(HeaderSignature)
	if signature == "" {
		return handleServiceError(c, apperrors.Unauthorized("missing webhook signature"))
	}

	// fasthttp reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)
	if err := h.payments.HandleWebhook(c.Context(), provider, body, signature); err != nil {
		h.logger.Warn("payment webhook rejected",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}

func paymentParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	regID, err := parseUUIDParam(c, "id", "registration")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	paymentID, err := parseUUIDParam(c, "paymentId", "payment")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return regID, paymentID, nil
}
