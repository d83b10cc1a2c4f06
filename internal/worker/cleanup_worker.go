package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// DefaultAuditRetention is used when no retention is configured
const DefaultAuditRetention = 365 * 24 * time.Hour

// InvitationCleaner deletes expired invitations
type InvitationCleaner interface {
	CleanupExpiredInvitations(ctx context.Context) (int64, error)
}

// AuditCleaner deletes old audit logs
type AuditCleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupWorker handles periodic cleanup tasks
type CleanupWorker struct {
	logger         *zap.Logger
	invitations    InvitationCleaner
	audit          AuditCleaner
	auditRetention time.Duration
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(
	logger *zap.Logger,
	invitations InvitationCleaner,
	audit AuditCleaner,
	auditRetention time.Duration,
) *CleanupWorker {
	if auditRetention <= 0 {
		auditRetention = DefaultAuditRetention
	}
	return &CleanupWorker{
		logger:         logger.Named("cleanup"),
		invitations:    invitations,
		audit:          audit,
		auditRetention: auditRetention,
	}
}

// RegisterHandlers registers the cleanup task handlers
func (w *CleanupWorker) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeInvitationCleanup, w.HandleInvitationCleanup)
	mux.HandleFunc(tasks.TypeAuditCleanup, w.HandleAuditCleanup)
}

// HandleInvitationCleanup deletes invitations past their expiry
func (w *CleanupWorker) HandleInvitationCleanup(ctx context.Context, _ *asynq.Task) error {
	deleted, err := w.invitations.CleanupExpiredInvitations(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("expired invitations deleted", zap.Int64("count", deleted))
	return nil
}

// HandleAuditCleanup deletes audit logs older than the retention
func (w *CleanupWorker) HandleAuditCleanup(ctx context.Context, _ *asynq.Task) error {
	deleted, err := w.audit.Cleanup(ctx, w.auditRetention)
	if err != nil {
		return err
	}

	w.logger.Info("old audit logs deleted",
		zap.Int64("count", deleted),
		zap.Duration("retention", w.auditRetention),
	)
	return nil
}
