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
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// TrackRepository handles track data operations in PostgreSQL
type TrackRepository struct {
	db *database.PostgresDB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *database.PostgresDB) *TrackRepository {
	return &TrackRepository{db: db}
}

const trackColumns = `id, event_id, name, color, sort_order, created_at, updated_at`

func scanTrack(row pgx.Row) (*domain.Track, error) {
	var t domain.Track
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Color,
		&t.SortOrder,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create creates a new track
func (r *TrackRepository) Create(ctx context.Context, t *domain.Track) error {
	query := `
		INSERT INTO tracks (id, event_id, name, color, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		t.ID,
		t.EventID,
		t.Name,
		t.Color,
		t.SortOrder,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	return nil
}

// GetByID retrieves a track of an event
func (r *TrackRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = $1 AND event_id = $2`

	t, err := scanTrack(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("track")
		}
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	return t, nil
}

// Update updates a track
func (r *TrackRepository) Update(ctx context.Context, t *domain.Track) error {
	query := `
		UPDATE tracks
		SET name = $3, color = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, t.ID, t.EventID, t.Name, t.Color, t.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("track")
	}

	return nil
}

// Delete deletes a track. Its sessions stay on the schedule without a track.
func (r *TrackRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM tracks WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("track")
	}

	return nil
}

// List retrieves a page of tracks of an event in display order
func (r *TrackRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Track, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM tracks WHERE event_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	query := `
		SELECT ` + trackColumns + `
		FROM tracks
		WHERE event_id = $1
		ORDER BY sort_order, name
		LIMIT $2 OFFSET $3
	`

	tracks, err := r.query(ctx, query, eventID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}

	return tracks, total, nil
}

// ListAll retrieves every track of an event in display order
func (r *TrackRepository) ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE event_id = $1 ORDER BY sort_order, name`
	return r.query(ctx, query, eventID)
}

func (r *TrackRepository) query(ctx context.Context, query string, args ...any) ([]domain.Track, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, *t)
	}

	return tracks, rows.Err()
}
