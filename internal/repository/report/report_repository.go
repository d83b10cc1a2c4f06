// Package report holds the read model used for event statistics and
// registration exports. It runs on bun over the lib/pq reporting connection.
package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// Repository serves aggregate and export queries
type Repository struct {
	db *bun.DB
}

// NewRepository creates a new reporting repository
func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

type statusCount struct {
	Status string `bun:"status"`
	Count  int64  `bun:"count"`
}

type currencyTotal struct {
	Currency string `bun:"currency"`
	Total    int64  `bun:"total"`
}

type ticketRow struct {
	ID       uuid.UUID `bun:"id"`
	Name     string    `bun:"name"`
	Sold     int       `bun:"sold"`
	Quantity int       `bun:"quantity"`
}

// EventStats summarizes registrations, tickets and revenue of an event
func (r *Repository) EventStats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error) {
	stats := &domain.EventStats{
		EventID:               eventID,
		RegistrationsByStatus: make(map[domain.RegistrationStatus]int64),
		PaymentsByStatus:      make(map[domain.PaymentStatus]int64),
		RevenueByCurrency:     make(map[string]int64),
		Tickets:               []domain.TicketStats{},
	}

	var byStatus []statusCount
	err := r.db.NewSelect().
		TableExpr("registrations AS r").
		ColumnExpr("r.status AS status").
		ColumnExpr("COUNT(*) AS count").
		Where("r.event_id = ?", eventID).
		GroupExpr("r.status").
		Scan(ctx, &byStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations by status: %w", err)
	}
	for _, row := range byStatus {
		status := domain.RegistrationStatus(row.Status)
		stats.RegistrationsByStatus[status] = row.Count
		stats.TotalRegistrations += row.Count
		if status == domain.RegistrationStatusCheckedIn {
			stats.CheckedIn = row.Count
		}
	}

	var byPayment []statusCount
	err = r.db.NewSelect().
		TableExpr("registrations AS r").
		ColumnExpr("r.payment_status AS status").
		ColumnExpr("COUNT(*) AS count").
		Where("r.event_id = ?", eventID).
		Where("r.status <> ?", domain.RegistrationStatusCancelled).
		GroupExpr("r.payment_status").
		Scan(ctx, &byPayment)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations by payment status: %w", err)
	}
	for _, row := range byPayment {
		stats.PaymentsByStatus[domain.PaymentStatus(row.Status)] = row.Count
	}

	var tickets []ticketRow
	err = r.db.NewSelect().
		TableExpr("ticket_types AS t").
		ColumnExpr("t.id, t.name, t.sold, t.quantity").
		Where("t.event_id = ?", eventID).
		OrderExpr("t.price, t.name").
		Scan(ctx, &tickets)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket stats: %w", err)
	}
	for _, t := range tickets {
		stats.Tickets = append(stats.Tickets, domain.TicketStats{
			TicketTypeID: t.ID,
			Name:         t.Name,
			Sold:         t.Sold,
			Quantity:     t.Quantity,
		})
	}

	var revenue []currencyTotal
	err = r.db.NewSelect().
		TableExpr("payments AS p").
		ColumnExpr("p.currency AS currency").
		ColumnExpr("SUM(p.amount) AS total").
		Where("p.event_id = ?", eventID).
		Where("p.status = ?", domain.PaymentStatusPaid).
		GroupExpr("p.currency").
		Scan(ctx, &revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	for _, row := range revenue {
		stats.RevenueByCurrency[row.Currency] = row.Total
	}

	if seated := stats.CheckedIn + stats.RegistrationsByStatus[domain.RegistrationStatusConfirmed]; seated > 0 {
		stats.CheckInRatio = float64(stats.CheckedIn) / float64(seated)
	}

	return stats, nil
}

func (r *Repository) exportQuery(eventID uuid.UUID) *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("registrations AS r").
		Join("JOIN attendees AS a ON a.id = r.attendee_id").
		Join("JOIN ticket_types AS t ON t.id = r.ticket_type_id").
		ColumnExpr("r.id AS registration_id").
		ColumnExpr("a.first_name, a.last_name, a.email, a.company").
		ColumnExpr("t.name AS ticket_name").
		ColumnExpr("r.status, r.payment_status, r.amount, r.currency, r.created_at, r.checked_in_at").
		Where("r.event_id = ?", eventID).
		OrderExpr("r.created_at, r.id")
}

// StreamExportRows calls fn for every registration of an event in creation order.
// Rows are read from the cursor one by one so that large events are never held in memory.
func (r *Repository) StreamExportRows(ctx context.Context, eventID uuid.UUID, fn func(*domain.ExportRow) error) error {
	rows, err := r.exportQuery(eventID).Rows(ctx)
	if err != nil {
		return fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row domain.ExportRow
		if err := r.db.ScanRow(ctx, rows, &row); err != nil {
			return fmt.Errorf("failed to scan export row: %w", err)
		}
		if err := fn(&row); err != nil {
			return err
		}
	}

	return rows.Err()
}
