package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// AuditLister reads the audit log
type AuditLister interface {
	List(ctx context.Context, orgID uuid.UUID, action *domain.AuditAction, resourceType *domain.AuditResourceType, p pagination.Params) ([]domain.AuditLog, int64, error)
}

// AuditHandler handles audit log endpoints
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /api/organization/audit-logs
func (h *AuditHandler) List(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var q dto.AuditQuery
	if err := dto.ParseQuery(c, &q); err != nil {
		return handleServiceError(c, err)
	}

	var action *domain.AuditAction
	if q.Action != "" {
		a := domain.AuditAction(q.Action)
		action = &a
	}
	var resourceType *domain.AuditResourceType
	if q.ResourceType != "" {
		rt := domain.AuditResourceType(q.ResourceType)
		resourceType = &rt
	}

	p := parsePagination(c)
	logs, total, err := h.audit.List(c.Context(), orgID, action, resourceType, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, logs, total, p)
}
