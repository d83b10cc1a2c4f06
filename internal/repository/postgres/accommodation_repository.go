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

// AccommodationRepository handles hotel booking data operations in PostgreSQL
type AccommodationRepository struct {
	db *database.PostgresDB
}

// NewAccommodationRepository creates a new accommodation repository
func NewAccommodationRepository(db *database.PostgresDB) *AccommodationRepository {
	return &AccommodationRepository{db: db}
}

const accommodationColumns = `id, event_id, registration_id, room_type_id, check_in, check_out, guests, status,
	notes, created_at, updated_at`

func scanAccommodation(row pgx.Row) (*domain.Accommodation, error) {
	var a domain.Accommodation
	err := row.Scan(
		&a.ID,
		&a.EventID,
		&a.RegistrationID,
		&a.RoomTypeID,
		&a.CheckIn,
		&a.CheckOut,
		&a.Guests,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create creates a new accommodation
func (r *AccommodationRepository) Create(ctx context.Context, a *domain.Accommodation) error {
	query := `
		INSERT INTO accommodations (id, event_id, registration_id, room_type_id, check_in, check_out, guests, status,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		a.ID,
		a.EventID,
		a.RegistrationID,
		a.RoomTypeID,
		a.CheckIn,
		a.CheckOut,
		a.Guests,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("registration already has an accommodation")
		}
		return fmt.Errorf("failed to create accommodation: %w", err)
	}

	return nil
}

// GetByID retrieves an accommodation of an event
func (r *AccommodationRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodations WHERE id = $1 AND event_id = $2`

	a, err := scanAccommodation(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("accommodation")
		}
		return nil, fmt.Errorf("failed to get accommodation: %w", err)
	}

	return a, nil
}

// Lock retrieves an accommodation of an event and locks its row
func (r *AccommodationRepository) Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodations WHERE id = $1 AND event_id = $2 FOR UPDATE`

	a, err := scanAccommodation(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("accommodation")
		}
		return nil, fmt.Errorf("failed to lock accommodation: %w", err)
	}

	return a, nil
}

// Update updates an accommodation
func (r *AccommodationRepository) Update(ctx context.Context, a *domain.Accommodation) error {
	query := `
		UPDATE accommodations
		SET check_in = $3, check_out = $4, guests = $5, status = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		a.ID,
		a.EventID,
		a.CheckIn,
		a.CheckOut,
		a.Guests,
		a.Status,
		a.Notes,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("registration already has an accommodation")
		}
		return fmt.Errorf("failed to update accommodation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("accommodation")
	}

	return nil
}

// Delete deletes an accommodation
func (r *AccommodationRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM accommodations WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete accommodation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("accommodation")
	}

	return nil
}

// List retrieves a page of accommodations of an event
func (r *AccommodationRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM accommodations WHERE event_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accommodations: %w", err)
	}

	query := `
		SELECT ` + accommodationColumns + `
		FROM accommodations
		WHERE event_id = $1
		ORDER BY check_in, created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, eventID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accommodations: %w", err)
	}
	defer rows.Close()

	var accommodations []domain.Accommodation
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan accommodation: %w", err)
		}
		accommodations = append(accommodations, *a)
	}

	return accommodations, total, rows.Err()
}

// ListActiveByRegistration retrieves the non-cancelled accommodations of a registration
func (r *AccommodationRepository) ListActiveByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Accommodation, error) {
	query := `
		SELECT ` + accommodationColumns + `
		FROM accommodations
		WHERE registration_id = $1 AND status <> 'CANCELLED'
		FOR UPDATE
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accommodations: %w", err)
	}
	defer rows.Close()

	var accommodations []domain.Accommodation
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accommodation: %w", err)
		}
		accommodations = append(accommodations, *a)
	}

	return accommodations, rows.Err()
}
