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

// TicketRepository handles ticket type data operations in PostgreSQL
type TicketRepository struct {
	db *database.PostgresDB
}

// NewTicketRepository creates a new ticket type repository
func NewTicketRepository(db *database.PostgresDB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, event_id, name, description, price, currency, quantity, sold,
	sales_start, sales_end, active, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.TicketType, error) {
	var t domain.TicketType
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Description,
		&t.Price,
		&t.Currency,
		&t.Quantity,
		&t.Sold,
		&t.SalesStart,
		&t.SalesEnd,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create creates a new ticket type
func (r *TicketRepository) Create(ctx context.Context, t *domain.TicketType) error {
	query := `
		INSERT INTO ticket_types (id, event_id, name, description, price, currency, quantity, sold,
			sales_start, sales_end, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		t.ID,
		t.EventID,
		t.Name,
		t.Description,
		t.Price,
		t.Currency,
		t.Quantity,
		t.Sold,
		t.SalesStart,
		t.SalesEnd,
		t.Active,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket type: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket type of an event
func (r *TicketRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	query := `SELECT ` + ticketColumns + ` FROM ticket_types WHERE id = $1 AND event_id = $2`

	t, err := scanTicket(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ticket type")
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	return t, nil
}

// Lock retrieves a ticket type and locks its row until the surrounding
// transaction ends, serializing seat accounting for that ticket type.
func (r *TicketRepository) Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	query := `SELECT ` + ticketColumns + ` FROM ticket_types WHERE id = $1 AND event_id = $2 FOR UPDATE`

	t, err := scanTicket(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ticket type")
		}
		return nil, fmt.Errorf("failed to lock ticket type: %w", err)
	}

	return t, nil
}

// Update updates the editable fields of a ticket type. Sold is managed by AdjustSold.
func (r *TicketRepository) Update(ctx context.Context, t *domain.TicketType) error {
	query := `
		UPDATE ticket_types
		SET name = $3, description = $4, price = $5, currency = $6, quantity = $7,
			sales_start = $8, sales_end = $9, active = $10, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		t.ID,
		t.EventID,
		t.Name,
		t.Description,
		t.Price,
		t.Currency,
		t.Quantity,
		t.SalesStart,
		t.SalesEnd,
		t.Active,
	)
	if err != nil {
		if database.IsCheckViolation(err) {
			return apperrors.Conflict("quantity cannot be lower than the number of tickets sold")
		}
		return fmt.Errorf("failed to update ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("ticket type")
	}

	return nil
}

// AdjustSold adds delta to the sold counter
func (r *TicketRepository) AdjustSold(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE ticket_types SET sold = sold + $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, delta)
	if err != nil {
		if database.IsCheckViolation(err) {
			return apperrors.Conflict("ticket type has no seats left")
		}
		return fmt.Errorf("failed to adjust sold count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("ticket type")
	}

	return nil
}

// Delete deletes a ticket type. Ticket types referenced by registrations cannot be deleted.
func (r *TicketRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM ticket_types WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Conflict("ticket type has registrations and cannot be deleted")
		}
		return fmt.Errorf("failed to delete ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("ticket type")
	}

	return nil
}

// List retrieves a page of ticket types of an event
func (r *TicketRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM ticket_types WHERE event_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ticket types: %w", err)
	}

	query := `
		SELECT ` + ticketColumns + `
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price, name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, eventID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	var tickets []domain.TicketType
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		tickets = append(tickets, *t)
	}

	return tickets, total, rows.Err()
}
