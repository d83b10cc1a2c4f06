package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
)

// ExportRepository tracks asynchronous export jobs in PostgreSQL
type ExportRepository struct {
	db *database.PostgresDB
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *database.PostgresDB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create records a new export job
func (r *ExportRepository) Create(ctx context.Context, e *domain.Export) error {
	query := `
		INSERT INTO exports (id, event_id, requested_by, status, object_key, row_count, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		e.ID,
		e.EventID,
		e.RequestedBy,
		e.Status,
		e.ObjectKey,
		e.RowCount,
		e.Error,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

// GetByID retrieves an export of an event
func (r *ExportRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Export, error) {
	query := `
		SELECT id, event_id, requested_by, status, object_key, row_count, error, created_at, completed_at
		FROM exports
		WHERE id = $1 AND event_id = $2
	`

	var e domain.Export
	err := r.db.Conn(ctx).QueryRow(ctx, query, id, eventID).Scan(
		&e.ID,
		&e.EventID,
		&e.RequestedBy,
		&e.Status,
		&e.ObjectKey,
		&e.RowCount,
		&e.Error,
		&e.CreatedAt,
		&e.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("export")
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	return &e, nil
}

// Update persists the progress of an export job
func (r *ExportRepository) Update(ctx context.Context, e *domain.Export) error {
	query := `
		UPDATE exports
		SET status = $2, object_key = $3, row_count = $4, error = $5, completed_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, e.ID, e.Status, e.ObjectKey, e.RowCount, e.Error, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("export")
	}

	return nil
}
