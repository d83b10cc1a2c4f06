package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// AuditRepository defines audit log storage operations
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error)
	ListAuditLogs(ctx context.Context, filter *domain.AuditLogFilter) ([]domain.AuditLog, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditService records and lists audit logs
type AuditService struct {
	auditRepo AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error) {
	return s.auditRepo.CreateAuditLog(ctx, input)
}

// LogAction is a convenience method for logging with minimal parameters
func (s *AuditService) LogAction(
	ctx context.Context,
	orgID uuid.UUID,
	actor domain.Actor,
	action domain.AuditAction,
	resourceType domain.AuditResourceType,
	resourceID *uuid.UUID,
	description string,
) error {
	_, err := s.auditRepo.CreateAuditLog(ctx, &domain.AuditLogInput{
		OrganizationID: orgID,
		ActorID:        actor.UserID,
		ActorEmail:     actor.Email,
		ActorType:      actor.Type,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Description:    description,
		IPAddress:      actor.IPAddress,
		UserAgent:      actor.UserAgent,
		RequestID:      actor.RequestID,
	})
	return err
}

// List retrieves audit logs of an organization with filtering
func (s *AuditService) List(
	ctx context.Context,
	orgID uuid.UUID,
	action *domain.AuditAction,
	resourceType *domain.AuditResourceType,
	p pagination.Params,
) ([]domain.AuditLog, int64, error) {
	return s.auditRepo.ListAuditLogs(ctx, &domain.AuditLogFilter{
		OrganizationID: orgID,
		Action:         action,
		ResourceType:   resourceType,
		Limit:          p.Limit,
		Offset:         p.Offset,
	})
}

// Cleanup deletes audit logs older than retention
func (s *AuditService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.auditRepo.DeleteOlderThan(ctx, time.Now().Add(-retention))
}
