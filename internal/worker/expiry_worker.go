package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

const (
	// ExpireSweepBatch caps the registrations expired by one sweep
	ExpireSweepBatch = 500
	// ExpireSweepUniqueTTL keeps overlapping sweeps out of the queue
	ExpireSweepUniqueTTL = 9 * time.Minute
)

// RegistrationExpirer cancels registrations whose payment window closed
type RegistrationExpirer interface {
	Expire(ctx context.Context, id uuid.UUID) error
	SweepOverdue(ctx context.Context, limit int) (int, error)
}

// ExpiryWorker expires unpaid registrations, from scheduled asynq tasks,
// RabbitMQ delayed messages and the periodic sweep
type ExpiryWorker struct {
	logger        *zap.Logger
	registrations RegistrationExpirer
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(logger *zap.Logger, registrations RegistrationExpirer) *ExpiryWorker {
	return &ExpiryWorker{
		logger:        logger.Named("expiry"),
		registrations: registrations,
	}
}

// RegisterHandlers registers the expiry task handlers
func (w *ExpiryWorker) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeRegistrationExpire, w.HandleExpire)
	mux.HandleFunc(tasks.TypeExpireSweep, w.HandleSweep)
}

// HandleExpire expires the registration of a scheduled task
func (w *ExpiryWorker) HandleExpire(ctx context.Context, t *asynq.Task) error {
	return w.HandleMessage(ctx, t.Payload())
}

// HandleMessage expires the registration named by a raw expiry payload.
// It is the RabbitMQ consumer handler.
func (w *ExpiryWorker) HandleMessage(ctx context.Context, body []byte) error {
	var payload tasks.RegistrationExpirePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		// acked so it is not redelivered
		w.logger.Warn("dropping malformed expiry message", zap.Error(err))
		return nil
	}

	if err := w.registrations.Expire(ctx, payload.RegistrationID); err != nil {
		return fmt.Errorf("failed to expire registration %s: %w", payload.RegistrationID, err)
	}
	return nil
}

// HandleSweep expires overdue registrations whose expiry message was lost
func (w *ExpiryWorker) HandleSweep(ctx context.Context, _ *asynq.Task) error {
	expired, err := w.registrations.SweepOverdue(ctx, ExpireSweepBatch)
	if err != nil {
		return err
	}
	if expired > 0 {
		w.logger.Info("expired overdue registrations", zap.Int("count", expired))
	}
	return nil
}
