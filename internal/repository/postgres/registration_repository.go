package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// RegistrationRepository handles registration data operations in PostgreSQL
type RegistrationRepository struct {
	db *database.PostgresDB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *database.PostgresDB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `r.id, r.event_id, r.attendee_id, r.ticket_type_id, r.status, r.payment_status,
	r.amount, r.currency, r.notes, r.expires_at, r.checked_in_at, r.cancelled_at, r.created_at, r.updated_at`

// registrationWithJoins selects a registration together with its attendee and ticket type
const registrationWithJoins = `SELECT ` + registrationColumns + `,
		a.id, a.event_id, a.first_name, a.last_name, a.email, a.phone, a.company, a.job_title, a.created_at, a.updated_at,
		t.id, t.event_id, t.name, t.description, t.price, t.currency, t.quantity, t.sold,
		t.sales_start, t.sales_end, t.active, t.created_at, t.updated_at
	FROM registrations r
	JOIN attendees a ON a.id = r.attendee_id
	JOIN ticket_types t ON t.id = r.ticket_type_id`

func registrationDest(reg *domain.Registration) []any {
	return []any{
		&reg.ID,
		&reg.EventID,
		&reg.AttendeeID,
		&reg.TicketTypeID,
		&reg.Status,
		&reg.PaymentStatus,
		&reg.Amount,
		&reg.Currency,
		&reg.Notes,
		&reg.ExpiresAt,
		&reg.CheckedInAt,
		&reg.CancelledAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	}
}

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	if err := row.Scan(registrationDest(&reg)...); err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanRegistrationWithJoins(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	var a domain.Attendee
	var t domain.TicketType

	dest := registrationDest(&reg)
	dest = append(dest,
		&a.ID, &a.EventID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Company, &a.JobTitle,
		&a.CreatedAt, &a.UpdatedAt,
		&t.ID, &t.EventID, &t.Name, &t.Description, &t.Price, &t.Currency, &t.Quantity, &t.Sold,
		&t.SalesStart, &t.SalesEnd, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	reg.Attendee = &a
	reg.TicketType = &t
	return &reg, nil
}

// Create creates a new registration
func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (id, event_id, attendee_id, ticket_type_id, status, payment_status,
			amount, currency, notes, expires_at, checked_in_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		reg.ID,
		reg.EventID,
		reg.AttendeeID,
		reg.TicketTypeID,
		reg.Status,
		reg.PaymentStatus,
		reg.Amount,
		reg.Currency,
		reg.Notes,
		reg.ExpiresAt,
		reg.CheckedInAt,
		reg.CancelledAt,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("attendee already has an active registration for this event")
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}

	return nil
}

// GetByID retrieves a registration of an event with its attendee and ticket type
func (r *RegistrationRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error) {
	query := registrationWithJoins + ` WHERE r.id = $1 AND r.event_id = $2`

	reg, err := scanRegistrationWithJoins(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("registration")
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return reg, nil
}

// Lock retrieves a registration by ID and locks its row for the surrounding transaction
func (r *RegistrationRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations r WHERE r.id = $1 FOR UPDATE`

	reg, err := scanRegistration(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("registration")
		}
		return nil, fmt.Errorf("failed to lock registration: %w", err)
	}

	return reg, nil
}

// Update persists status, payment state, notes and timestamps of a registration
func (r *RegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	query := `
		UPDATE registrations
		SET status = $2, payment_status = $3, notes = $4, expires_at = $5,
			checked_in_at = $6, cancelled_at = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		reg.ID,
		reg.Status,
		reg.PaymentStatus,
		reg.Notes,
		reg.ExpiresAt,
		reg.CheckedInAt,
		reg.CancelledAt,
		reg.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("attendee already has an active registration for this event")
		}
		return fmt.Errorf("failed to update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("registration")
	}

	return nil
}

// Delete deletes a registration of an event
func (r *RegistrationRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM registrations WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("registration")
	}

	return nil
}

// List retrieves a page of registrations matching filter, newest first
func (r *RegistrationRepository) List(ctx context.Context, filter *domain.RegistrationFilter, p pagination.Params) ([]domain.Registration, int64, error) {
	var c conditions
	c.add("r.event_id = $%d", filter.EventID)
	if filter.Status != nil {
		c.add("r.status = $%d", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		c.add("r.payment_status = $%d", *filter.PaymentStatus)
	}
	if filter.TicketTypeID != nil {
		c.add("r.ticket_type_id = $%d", *filter.TicketTypeID)
	}
	if filter.Search != "" {
		c.add(`(a.first_name ILIKE $%[1]d OR a.last_name ILIKE $%[1]d OR a.email ILIKE $%[1]d OR a.company ILIKE $%[1]d)`,
			likePattern(filter.Search))
	}

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM registrations r
		JOIN attendees a ON a.id = r.attendee_id
		` + c.where()
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY r.created_at DESC, r.id LIMIT %s OFFSET %s`,
		registrationWithJoins, c.where(), c.placeholder(p.Limit), c.placeholder(p.Offset))

	rows, err := r.db.Conn(ctx).Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		reg, err := scanRegistrationWithJoins(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}

	return regs, total, rows.Err()
}

// HasActiveForAttendee reports whether the attendee has a non-cancelled registration for the event
func (r *RegistrationRepository) HasActiveForAttendee(ctx context.Context, eventID, attendeeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND attendee_id = $2 AND status <> 'CANCELLED'
		)
	`

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, query, eventID, attendeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registrations: %w", err)
	}

	return exists, nil
}

// CountSeated counts the registrations of an event that hold a seat
func (r *RegistrationRepository) CountSeated(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND status IN ('PENDING', 'CONFIRMED', 'CHECKED_IN')
	`

	var count int
	if err := r.db.Conn(ctx).QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	return count, nil
}

// NextWaitlisted locks and returns the oldest waitlisted registration of a
// ticket type. Rows locked by a concurrent promotion are skipped.
func (r *RegistrationRepository) NextWaitlisted(ctx context.Context, ticketTypeID uuid.UUID) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r
		WHERE r.ticket_type_id = $1 AND r.status = 'WAITLISTED'
		ORDER BY r.created_at, r.id
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	reg, err := scanRegistration(r.db.Conn(ctx).QueryRow(ctx, query, ticketTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("waitlisted registration")
		}
		return nil, fmt.Errorf("failed to get waitlisted registration: %w", err)
	}

	return reg, nil
}

// NextWaitlistedWithRoom locks and returns the oldest waitlisted registration
// of an event whose ticket type still has seats left
func (r *RegistrationRepository) NextWaitlistedWithRoom(ctx context.Context, eventID uuid.UUID) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r
		JOIN ticket_types t ON t.id = r.ticket_type_id
		WHERE r.event_id = $1 AND r.status = 'WAITLISTED' AND t.sold < t.quantity
		ORDER BY r.created_at, r.id
		LIMIT 1
		FOR UPDATE OF r SKIP LOCKED
	`

	reg, err := scanRegistration(r.db.Conn(ctx).QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("waitlisted registration")
		}
		return nil, fmt.Errorf("failed to get waitlisted registration: %w", err)
	}

	return reg, nil
}

// ListOverdueIDs returns pending unpaid registrations whose payment window closed before now
func (r *RegistrationRepository) ListOverdueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM registrations
		WHERE status = 'PENDING' AND payment_status <> 'PAID'
			AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue registrations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan registration id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
