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

// APIKeyService manages organization API keys
type APIKeyService interface {
	Create(ctx context.Context, orgID uuid.UUID, input *domain.APIKeyInput, actor domain.Actor) (*domain.APIKeyCreateResult, error)
	List(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.APIKey, int64, error)
	Delete(ctx context.Context, orgID, keyID uuid.UUID, actor domain.Actor) error
}

// APIKeysHandler handles API key endpoints
type APIKeysHandler struct {
	keys   APIKeyService
	logger *zap.Logger
}

// NewAPIKeysHandler creates a new API keys handler
func NewAPIKeysHandler(keys APIKeyService, logger *zap.Logger) *APIKeysHandler {
	return &APIKeysHandler{
		keys:   keys,
		logger: logger,
	}
}

// List handles GET /api/organization/api-keys
func (h *APIKeysHandler) List(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	p := parsePagination(c)
	keys, total, err := h.keys.List(c.Context(), orgID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, keys, total, p)
}

// Create handles POST /api/organization/api-keys. The full key is only
// part of this response.
func (h *APIKeysHandler) Create(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.APIKeyInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.keys.Create(c.Context(), orgID, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	h.logger.Info("api key created",
		zap.String("org_id", orgID.String()),
		zap.String("public_id", result.APIKey.PublicID),
	)
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Delete handles DELETE /api/organization/api-keys/:id
func (h *APIKeysHandler) Delete(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	keyID, err := parseUUIDParam(c, "id", "API key")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.keys.Delete(c.Context(), orgID, keyID, middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
