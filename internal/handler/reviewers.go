package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// ReviewerService assigns reviewers to events
type ReviewerService interface {
	Assign(ctx context.Context, event *domain.Event, input *domain.ReviewerInput) (*domain.Reviewer, error)
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error)
	Remove(ctx context.Context, eventID, id uuid.UUID) error
}

// ReviewersHandler handles reviewer assignment endpoints
type ReviewersHandler struct {
	reviewers ReviewerService
}

// NewReviewersHandler creates a new reviewers handler
func NewReviewersHandler(reviewers ReviewerService) *ReviewersHandler {
	return &ReviewersHandler{reviewers: reviewers}
}

// List handles GET /api/events/:eventId/reviewers
func (h *ReviewersHandler) List(c *fiber.Ctx) error {
	p := parsePagination(c)
	reviewers, total, err := h.reviewers.List(c.Context(), currentEvent(c).ID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, reviewers, total, p)
}

// Assign handles POST /api/events/:eventId/reviewers
func (h *ReviewersHandler) Assign(c *fiber.Ctx) error {
	var input domain.ReviewerInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	reviewer, err := h.reviewers.Assign(c.Context(), currentEvent(c), &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reviewer)
}

// Remove handles DELETE /api/events/:eventId/reviewers/:reviewerId
func (h *ReviewersHandler) Remove(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "reviewerId", "reviewer")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.reviewers.Remove(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
