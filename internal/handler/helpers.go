package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/logger"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

const eventLocalKey = "event"

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// errorResponse creates a standardized JSON error response.
func errorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorResponse{
		Error:   utils.StatusMessage(statusCode),
		Message: message,
	})
}

// handleServiceError turns service errors into error responses. Application
// errors keep their status and message; anything else is logged, reported
// and answered with a generic 500.
func handleServiceError(c *fiber.Ctx, err error) error {
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.StatusCode < fiber.StatusInternalServerError {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error:   utils.StatusMessage(appErr.StatusCode),
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}

	logger.Error("request failed",
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	middleware.CaptureError(c, err)

	return errorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred")
}

// parsePagination reads limit and offset, see pagination.New for the bounds.
func parsePagination(c *fiber.Ctx) pagination.Params {
	return pagination.New(c.QueryInt("limit", pagination.DefaultLimit), c.QueryInt("offset", 0))
}

// listResponse writes the {data, totalCount, hasMore} envelope.
func listResponse[T any](c *fiber.Ctx, items []T, total int64, p pagination.Params) error {
	return c.JSON(pagination.NewPage(items, total, p))
}

// parseUUIDParam parses a route parameter, naming the resource in the error.
func parseUUIDParam(c *fiber.Ctx, param, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("Invalid " + resource + " ID")
	}
	return id, nil
}

// parseOptionalUUID parses an optional UUID, already validated by a dto.
func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// requireOrgID returns the organization resolved by the auth middleware.
func requireOrgID(c *fiber.Ctx) (uuid.UUID, error) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		return uuid.Nil, apperrors.Forbidden("No organization selected")
	}
	return orgID, nil
}

// requireUserID returns the authenticated user, rejecting API keys.
func requireUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, apperrors.Unauthorized("User session required")
	}
	return userID, nil
}

// callerUserID is nil for API key requests.
func callerUserID(c *fiber.Ctx) *uuid.UUID {
	if userID, ok := middleware.GetUserID(c); ok {
		return &userID
	}
	return nil
}

// currentEvent returns the event loaded by EventsHandler.LoadEvent.
func currentEvent(c *fiber.Ctx) *domain.Event {
	event, _ := c.Locals(eventLocalKey).(*domain.Event)
	return event
}
