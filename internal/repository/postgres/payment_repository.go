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

// PaymentRepository handles payment data operations in PostgreSQL
type PaymentRepository struct {
	db *database.PostgresDB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *database.PostgresDB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, event_id, registration_id, provider, provider_ref, amount, currency, status,
	checkout_url, paid_at, refunded_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.RegistrationID,
		&p.Provider,
		&p.ProviderRef,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.CheckoutURL,
		&p.PaidAt,
		&p.RefundedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, event_id, registration_id, provider, provider_ref, amount, currency, status,
			checkout_url, paid_at, refunded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		p.ID,
		p.EventID,
		p.RegistrationID,
		p.Provider,
		p.ProviderRef,
		p.Amount,
		p.Currency,
		p.Status,
		p.CheckoutURL,
		p.PaidAt,
		p.RefundedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("payment reference already recorded")
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment of a registration
func (r *PaymentRepository) GetByID(ctx context.Context, registrationID, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND registration_id = $2`

	p, err := scanPayment(r.db.Conn(ctx).QueryRow(ctx, query, id, registrationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// LockByProviderRef retrieves a payment by its provider reference and locks it,
// so that duplicate webhook deliveries apply once.
func (r *PaymentRepository) LockByProviderRef(ctx context.Context, provider, ref string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider = $1 AND provider_ref = $2 FOR UPDATE`

	p, err := scanPayment(r.db.Conn(ctx).QueryRow(ctx, query, provider, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// Update persists a payment's status and timestamps
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, paid_at = $3, refunded_at = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, p.ID, p.Status, p.PaidAt, p.RefundedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("payment")
	}

	return nil
}

// ListByRegistration retrieves the payments of a registration, newest first
func (r *PaymentRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE registration_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	return payments, rows.Err()
}
