package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// ExportRunner writes a queued export to object storage
type ExportRunner interface {
	Run(ctx context.Context, eventID, id uuid.UUID) error
}

// ExportWorker handles registration exports
type ExportWorker struct {
	logger  *zap.Logger
	exports ExportRunner
}

// NewExportWorker creates a new export worker
func NewExportWorker(logger *zap.Logger, exports ExportRunner) *ExportWorker {
	return &ExportWorker{
		logger:  logger.Named("export"),
		exports: exports,
	}
}

// RegisterHandlers registers the export task handler
func (w *ExportWorker) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeExportRegistrations, w.ProcessTask)
}

// ProcessTask runs one export
func (w *ExportWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("processing export",
		zap.String("export_id", payload.ExportID.String()),
		zap.String("event_id", payload.EventID.String()),
	)

	if err := w.exports.Run(ctx, payload.EventID, payload.ExportID); err != nil {
		if apperrors.IsNotFound(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
