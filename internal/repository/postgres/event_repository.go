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

// EventRepository handles event data operations in PostgreSQL
type EventRepository struct {
	db *database.PostgresDB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.PostgresDB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, organization_id, name, slug, description, venue, timezone, start_date, end_date,
	status, capacity, payment_window_minutes, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.Name,
		&e.Slug,
		&e.Description,
		&e.Venue,
		&e.Timezone,
		&e.StartDate,
		&e.EndDate,
		&e.Status,
		&e.Capacity,
		&e.PaymentWindowMinutes,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, organization_id, name, slug, description, venue, timezone, start_date, end_date,
			status, capacity, payment_window_minutes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		e.ID,
		e.OrganizationID,
		e.Name,
		e.Slug,
		e.Description,
		e.Venue,
		e.Timezone,
		e.StartDate,
		e.EndDate,
		e.Status,
		e.Capacity,
		e.PaymentWindowMinutes,
		e.CreatedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("an event with this slug already exists")
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event of an organization
func (r *EventRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND organization_id = $2`

	e, err := scanEvent(r.db.Conn(ctx).QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("event")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// Get retrieves an event by ID regardless of organization, for background jobs
func (r *EventRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("event")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// Lock takes a row lock on an event for the rest of the transaction. Seat
// changes against the event capacity are serialized on it.
func (r *EventRepository) Lock(ctx context.Context, id uuid.UUID) error {
	query := `SELECT id FROM events WHERE id = $1 FOR UPDATE`

	var locked uuid.UUID
	if err := r.db.Conn(ctx).QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("event")
		}
		return fmt.Errorf("failed to lock event: %w", err)
	}

	return nil
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $3, description = $4, venue = $5, timezone = $6, start_date = $7, end_date = $8,
			status = $9, capacity = $10, payment_window_minutes = $11, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		e.ID,
		e.OrganizationID,
		e.Name,
		e.Description,
		e.Venue,
		e.Timezone,
		e.StartDate,
		e.EndDate,
		e.Status,
		e.Capacity,
		e.PaymentWindowMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event")
	}

	return nil
}

// Delete deletes an event and, through cascading keys, everything under it
func (r *EventRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1 AND organization_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event")
	}

	return nil
}

// List retrieves a page of events matching filter, newest start first
func (r *EventRepository) List(ctx context.Context, filter *domain.EventFilter, p pagination.Params) ([]domain.Event, int64, error) {
	var c conditions
	c.add("organization_id = $%d", filter.OrganizationID)
	if filter.Status != nil {
		c.add("status = $%d", *filter.Status)
	}
	if filter.Search != "" {
		c.add("(name ILIKE $%[1]d OR venue ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.ReviewerUserID != nil {
		c.add("id IN (SELECT event_id FROM reviewers WHERE user_id = $%d)", *filter.ReviewerUserID)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM events ` + c.where()
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY start_date DESC, name LIMIT %s OFFSET %s`,
		eventColumns, c.where(), c.placeholder(p.Limit), c.placeholder(p.Offset))

	rows, err := r.db.Conn(ctx).Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, total, rows.Err()
}

// SlugExists checks whether an organization already has an event with slug
func (r *EventRepository) SlugExists(ctx context.Context, orgID uuid.UUID, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE organization_id = $1 AND slug = $2)`

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, query, orgID, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return exists, nil
}
