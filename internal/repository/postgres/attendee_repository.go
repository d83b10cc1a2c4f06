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

// AttendeeRepository handles attendee data operations in PostgreSQL
type AttendeeRepository struct {
	db *database.PostgresDB
}

// NewAttendeeRepository creates a new attendee repository
func NewAttendeeRepository(db *database.PostgresDB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

const attendeeColumns = `id, event_id, first_name, last_name, email, phone, company, job_title, created_at, updated_at`

func scanAttendee(row pgx.Row) (*domain.Attendee, error) {
	var a domain.Attendee
	err := row.Scan(
		&a.ID,
		&a.EventID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Phone,
		&a.Company,
		&a.JobTitle,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create creates a new attendee
func (r *AttendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (id, event_id, first_name, last_name, email, phone, company, job_title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		a.ID,
		a.EventID,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Phone,
		a.Company,
		a.JobTitle,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("an attendee with this email is already registered for the event")
		}
		return fmt.Errorf("failed to create attendee: %w", err)
	}

	return nil
}

// GetByID retrieves an attendee of an event
func (r *AttendeeRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1 AND event_id = $2`

	a, err := scanAttendee(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("attendee")
		}
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}

	return a, nil
}

// GetByEmail retrieves an attendee of an event by email, case-insensitively
func (r *AttendeeRepository) GetByEmail(ctx context.Context, eventID uuid.UUID, email string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE event_id = $1 AND lower(email) = lower($2)`

	a, err := scanAttendee(r.db.Conn(ctx).QueryRow(ctx, query, eventID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("attendee")
		}
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}

	return a, nil
}

// Update updates an attendee
func (r *AttendeeRepository) Update(ctx context.Context, a *domain.Attendee) error {
	query := `
		UPDATE attendees
		SET first_name = $3, last_name = $4, email = $5, phone = $6, company = $7, job_title = $8, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		a.ID,
		a.EventID,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Phone,
		a.Company,
		a.JobTitle,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("an attendee with this email is already registered for the event")
		}
		return fmt.Errorf("failed to update attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("attendee")
	}

	return nil
}

// Delete deletes an attendee and their registrations
func (r *AttendeeRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM attendees WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("attendee")
	}

	return nil
}

// List retrieves a page of attendees, searching name, email and company
func (r *AttendeeRepository) List(ctx context.Context, filter *domain.AttendeeFilter, p pagination.Params) ([]domain.Attendee, int64, error) {
	var c conditions
	c.add("event_id = $%d", filter.EventID)
	if filter.Search != "" {
		c.add(`(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR company ILIKE $%[1]d)`,
			likePattern(filter.Search))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendees ` + c.where()
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM attendees %s ORDER BY last_name, first_name, created_at LIMIT %s OFFSET %s`,
		attendeeColumns, c.where(), c.placeholder(p.Limit), c.placeholder(p.Offset))

	rows, err := r.db.Conn(ctx).Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []domain.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, *a)
	}

	return attendees, total, rows.Err()
}
