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

// ReviewerRepository handles reviewer assignments in PostgreSQL
type ReviewerRepository struct {
	db *database.PostgresDB
}

// NewReviewerRepository creates a new reviewer repository
func NewReviewerRepository(db *database.PostgresDB) *ReviewerRepository {
	return &ReviewerRepository{db: db}
}

// Create assigns a reviewer to an event
func (r *ReviewerRepository) Create(ctx context.Context, rv *domain.Reviewer) error {
	query := `
		INSERT INTO reviewers (id, event_id, user_id, track_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query, rv.ID, rv.EventID, rv.UserID, rv.TrackID, rv.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("user is already a reviewer of this event")
		}
		return fmt.Errorf("failed to create reviewer: %w", err)
	}

	return nil
}

// GetByID retrieves a reviewer assignment of an event with the user's name and email
func (r *ReviewerRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Reviewer, error) {
	query := `
		SELECT rv.id, rv.event_id, rv.user_id, rv.track_id, rv.created_at, u.email, u.name
		FROM reviewers rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.id = $1 AND rv.event_id = $2
	`

	var rv domain.Reviewer
	err := r.db.Conn(ctx).QueryRow(ctx, query, id, eventID).Scan(
		&rv.ID,
		&rv.EventID,
		&rv.UserID,
		&rv.TrackID,
		&rv.CreatedAt,
		&rv.Email,
		&rv.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("reviewer")
		}
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}

	return &rv, nil
}

// Delete removes a reviewer assignment
func (r *ReviewerRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM reviewers WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete reviewer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("reviewer")
	}

	return nil
}

// List retrieves a page of reviewers of an event
func (r *ReviewerRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM reviewers WHERE event_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviewers: %w", err)
	}

	query := `
		SELECT rv.id, rv.event_id, rv.user_id, rv.track_id, rv.created_at, u.email, u.name
		FROM reviewers rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.event_id = $1
		ORDER BY u.name, u.email
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, eventID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviewers: %w", err)
	}
	defer rows.Close()

	var reviewers []domain.Reviewer
	for rows.Next() {
		var rv domain.Reviewer
		if err := rows.Scan(
			&rv.ID,
			&rv.EventID,
			&rv.UserID,
			&rv.TrackID,
			&rv.CreatedAt,
			&rv.Email,
			&rv.Name,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan reviewer: %w", err)
		}
		reviewers = append(reviewers, rv)
	}

	return reviewers, total, rows.Err()
}

// IsAssigned reports whether the user reviews the event
func (r *ReviewerRepository) IsAssigned(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviewers WHERE event_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reviewer: %w", err)
	}

	return exists, nil
}
