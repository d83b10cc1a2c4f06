package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// TicketRepository defines ticket type repository operations
type TicketRepository interface {
	Create(ctx context.Context, t *domain.TicketType) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error)
	Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error)
	Update(ctx context.Context, t *domain.TicketType) error
	AdjustSold(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error)
}

// WaitlistFiller seats waitlisted registrations when a ticket type gains seats
type WaitlistFiller interface {
	FillFromWaitlist(ctx context.Context, eventID, ticketTypeID uuid.UUID) (int, error)
}

// TicketService manages ticket types
type TicketService struct {
	ticketRepo TicketRepository
	tx         TxRunner
	waitlist   WaitlistFiller
	logger     *zap.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(logger *zap.Logger, ticketRepo TicketRepository, tx TxRunner) *TicketService {
	return &TicketService{logger: logger.Named("ticket"), ticketRepo: ticketRepo, tx: tx}
}

// SetWaitlistFiller sets what promotes the waitlist after a quantity increase
func (s *TicketService) SetWaitlistFiller(f WaitlistFiller) {
	s.waitlist = f
}

func validateSalesWindow(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return apperrors.Validation("salesEnd must be after salesStart")
	}
	return nil
}

// Create creates a ticket type
func (s *TicketService) Create(ctx context.Context, eventID uuid.UUID, input *domain.TicketTypeInput) (*domain.TicketType, error) {
	if err := validateSalesWindow(input.SalesStart, input.SalesEnd); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	now := time.Now()
	t := &domain.TicketType{
		ID:          uuid.New(),
		EventID:     eventID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Currency:    strings.ToUpper(input.Currency),
		Quantity:    input.Quantity,
		SalesStart:  input.SalesStart,
		SalesEnd:    input.SalesEnd,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves a ticket type of an event
func (s *TicketService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	return s.ticketRepo.GetByID(ctx, eventID, id)
}

// Update applies a partial update. Quantity cannot drop below the seats sold.
func (s *TicketService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.TicketTypeUpdateInput) (*domain.TicketType, error) {
	var t *domain.TicketType
	raised := false
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.ticketRepo.Lock(ctx, eventID, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			t.Name = *input.Name
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Price != nil {
			t.Price = *input.Price
		}
		if input.Currency != nil {
			t.Currency = strings.ToUpper(*input.Currency)
		}
		if input.Quantity != nil {
			if *input.Quantity < t.Sold {
				return apperrors.Conflict("quantity cannot be lower than the number of tickets sold")
			}
			raised = *input.Quantity > t.Quantity
			t.Quantity = *input.Quantity
		}
		if input.SalesStart != nil {
			t.SalesStart = input.SalesStart
		}
		if input.SalesEnd != nil {
			t.SalesEnd = input.SalesEnd
		}
		if input.Active != nil {
			t.Active = *input.Active
		}
		if err := validateSalesWindow(t.SalesStart, t.SalesEnd); err != nil {
			return err
		}
		t.UpdatedAt = time.Now()

		return s.ticketRepo.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if raised && s.waitlist != nil {
		promoted, err := s.waitlist.FillFromWaitlist(ctx, eventID, id)
		if err != nil {
			s.logger.Error("failed to fill waitlist",
				zap.String("ticket_type_id", id.String()),
				zap.Error(err),
			)
			return t, nil
		}
		if promoted > 0 {
			return s.ticketRepo.GetByID(ctx, eventID, id)
		}
	}
	return t, nil
}

// Delete deletes a ticket type that has no registrations
func (s *TicketService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return s.ticketRepo.Delete(ctx, eventID, id)
}

// List lists the ticket types of an event
func (s *TicketService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error) {
	return s.ticketRepo.List(ctx, eventID, p)
}
