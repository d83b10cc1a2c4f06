package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// TxRunner runs fn in a database transaction bound to the context passed to fn.
// Repository calls made with that context join the transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditLogger defines the interface for audit logging
type AuditLogger interface {
	Log(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error)
}

// TaskDispatcher enqueues background jobs
type TaskDispatcher interface {
	EnqueueInvitationEmail(ctx context.Context, payload *tasks.InvitationEmailPayload) error
	EnqueueRegistrationEmail(ctx context.Context, payload *tasks.RegistrationEmailPayload) error
	EnqueueExport(ctx context.Context, payload *tasks.ExportPayload) error
}

// ExpiryScheduler delivers a registration expiry message at a point in time
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, payload *tasks.RegistrationExpirePayload, at time.Time) error
}

// auditEntry describes one audit log line written in the background
type auditEntry struct {
	orgID        uuid.UUID
	action       domain.AuditAction
	resourceType domain.AuditResourceType
	resourceID   *uuid.UUID
	resourceName string
	description  string
	metadata     map[string]any
}

// recordAudit writes entry asynchronously; audit failures never fail the request
func recordAudit(logger AuditLogger, actor domain.Actor, entry auditEntry) {
	if logger == nil || entry.orgID == uuid.Nil {
		return
	}

	input := &domain.AuditLogInput{
		OrganizationID: entry.orgID,
		ActorID:        actor.UserID,
		ActorEmail:     actor.Email,
		ActorType:      actor.Type,
		Action:         entry.action,
		ResourceType:   entry.resourceType,
		ResourceID:     entry.resourceID,
		ResourceName:   entry.resourceName,
		Description:    entry.description,
		Metadata:       entry.metadata,
		IPAddress:      actor.IPAddress,
		UserAgent:      actor.UserAgent,
		RequestID:      actor.RequestID,
	}

	go func() {
		_, _ = logger.Log(context.Background(), input)
	}()
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}
