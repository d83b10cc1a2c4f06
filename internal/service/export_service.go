package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/export"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// ExportRepository defines export record operations
type ExportRepository interface {
	Create(ctx context.Context, e *domain.Export) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Export, error)
	Update(ctx context.Context, e *domain.Export) error
}

// ExportRowSource streams the flattened registrations of an event
type ExportRowSource interface {
	StreamExportRows(ctx context.Context, eventID uuid.UUID, fn func(*domain.ExportRow) error) error
}

// ObjectStore keeps export files
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, filename string) (string, error)
}

// ExportService writes registration exports, streamed or through object storage
type ExportService struct {
	exportRepo  ExportRepository
	rows        ExportRowSource
	store       ObjectStore
	dispatcher  TaskDispatcher
	auditLogger AuditLogger
	logger      *zap.Logger
}

// NewExportService creates a new export service. store may be nil in the
// API process when exports are only requested there.
func NewExportService(logger *zap.Logger, exportRepo ExportRepository, rows ExportRowSource, store ObjectStore, dispatcher TaskDispatcher) *ExportService {
	return &ExportService{
		logger:     logger.Named("export"),
		exportRepo: exportRepo,
		rows:       rows,
		store:      store,
		dispatcher: dispatcher,
	}
}

// SetAuditLogger sets the audit logger for the export service
func (s *ExportService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// WriteCSV streams the registrations of an event as CSV into w
func (s *ExportService) WriteCSV(ctx context.Context, eventID uuid.UUID, w io.Writer) (int, error) {
	cw, err := export.NewWriter(w)
	if err != nil {
		return 0, err
	}
	if err := s.rows.StreamExportRows(ctx, eventID, cw.Write); err != nil {
		return cw.Rows(), err
	}
	if err := cw.Flush(); err != nil {
		return cw.Rows(), err
	}
	return cw.Rows(), nil
}

// Create records an export request and queues it
func (s *ExportService) Create(ctx context.Context, event *domain.Event, actor domain.Actor) (*domain.Export, error) {
	e := &domain.Export{
		ID:          uuid.New(),
		EventID:     event.ID,
		RequestedBy: actor.UserID,
		Status:      domain.ExportStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.exportRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	if err := s.dispatcher.EnqueueExport(ctx, &tasks.ExportPayload{ExportID: e.ID, EventID: event.ID}); err != nil {
		s.fail(ctx, e, err)
		return nil, fmt.Errorf("failed to enqueue export: %w", err)
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        event.OrganizationID,
		action:       domain.AuditActionDataExported,
		resourceType: domain.AuditResourceEvent,
		resourceID:   ptrUUID(event.ID),
		resourceName: event.Name,
		description:  "registrations export requested",
		metadata:     map[string]any{"export_id": e.ID.String()},
	})

	return e, nil
}

// Get returns an export, with a download link once it is completed
func (s *ExportService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Export, error) {
	e, err := s.exportRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if e.Status == domain.ExportStatusCompleted && e.ObjectKey != "" && s.store != nil {
		url, err := s.store.PresignedURL(ctx, e.ObjectKey, fmt.Sprintf("registrations-%s.csv", e.EventID))
		if err != nil {
			return nil, err
		}
		e.DownloadURL = url
	}

	return e, nil
}

// Run writes the CSV of a queued export to object storage
func (s *ExportService) Run(ctx context.Context, eventID, id uuid.UUID) error {
	e, err := s.exportRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return err
	}
	if e.Status == domain.ExportStatusCompleted {
		return nil
	}
	if s.store == nil {
		err := errors.New("object storage is not configured")
		s.fail(ctx, e, err)
		return err
	}

	e.Status = domain.ExportStatusRunning
	e.Error = ""
	if err := s.exportRepo.Update(ctx, e); err != nil {
		return err
	}

	var buf bytes.Buffer
	rows, err := s.WriteCSV(ctx, eventID, &buf)
	if err != nil {
		s.fail(ctx, e, err)
		return fmt.Errorf("failed to write export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.csv", eventID, id)
	if err := s.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		s.fail(ctx, e, err)
		return err
	}

	now := time.Now()
	e.Status = domain.ExportStatusCompleted
	e.ObjectKey = key
	e.RowCount = rows
	e.CompletedAt = &now
	if err := s.exportRepo.Update(ctx, e); err != nil {
		return err
	}

	s.logger.Info("export completed",
		zap.String("export_id", id.String()),
		zap.Int("rows", rows),
	)
	return nil
}

func (s *ExportService) fail(ctx context.Context, e *domain.Export, cause error) {
	e.Status = domain.ExportStatusFailed
	e.Error = cause.Error()
	if err := s.exportRepo.Update(ctx, e); err != nil {
		s.logger.Error("failed to mark export failed", zap.String("export_id", e.ID.String()), zap.Error(err))
	}
}
