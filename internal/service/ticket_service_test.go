package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
)

func TestTicketService_Update(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("quantity below sold", func(t *testing.T) {
		repo := new(MockTicketRepository)
		ticket := &domain.TicketType{ID: uuid.New(), EventID: eventID, Quantity: 10, Sold: 6}
		repo.On("Lock", mock.Anything, eventID, ticket.ID).Return(ticket, nil)

		quantity := 5
		_, err := NewTicketService(zap.NewNop(), repo, &passthroughTx{}).Update(ctx, eventID, ticket.ID, &domain.TicketTypeUpdateInput{Quantity: &quantity})

		assert.True(t, apperrors.IsConflict(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("quantity equal to sold", func(t *testing.T) {
		repo := new(MockTicketRepository)
		filler := new(MockWaitlistFiller)
		ticket := &domain.TicketType{ID: uuid.New(), EventID: eventID, Quantity: 10, Sold: 6}
		repo.On("Lock", mock.Anything, eventID, ticket.ID).Return(ticket, nil)
		repo.On("Update", mock.Anything, ticket).Return(nil)

		svc := NewTicketService(zap.NewNop(), repo, &passthroughTx{})
		svc.SetWaitlistFiller(filler)
		quantity := 6
		updated, err := svc.Update(ctx, eventID, ticket.ID, &domain.TicketTypeUpdateInput{Quantity: &quantity})

		require.NoError(t, err)
		assert.Equal(t, 6, updated.Quantity)
		filler.AssertNotCalled(t, "FillFromWaitlist", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("raised quantity fills the waitlist", func(t *testing.T) {
		repo := new(MockTicketRepository)
		filler := new(MockWaitlistFiller)
		ticket := &domain.TicketType{ID: uuid.New(), EventID: eventID, Quantity: 2, Sold: 2}
		repo.On("Lock", mock.Anything, eventID, ticket.ID).Return(ticket, nil)
		repo.On("Update", mock.Anything, ticket).Return(nil)
		filler.On("FillFromWaitlist", mock.Anything, eventID, ticket.ID).Return(2, nil)
		repo.On("GetByID", mock.Anything, eventID, ticket.ID).Return(&domain.TicketType{ID: ticket.ID, EventID: eventID, Quantity: 4, Sold: 4}, nil)

		svc := NewTicketService(zap.NewNop(), repo, &passthroughTx{})
		svc.SetWaitlistFiller(filler)
		quantity := 4
		updated, err := svc.Update(ctx, eventID, ticket.ID, &domain.TicketTypeUpdateInput{Quantity: &quantity})

		require.NoError(t, err)
		assert.Equal(t, 4, updated.Sold)
		filler.AssertExpectations(t)
	})

	t.Run("waitlist failure keeps the update", func(t *testing.T) {
		repo := new(MockTicketRepository)
		filler := new(MockWaitlistFiller)
		ticket := &domain.TicketType{ID: uuid.New(), EventID: eventID, Quantity: 2, Sold: 2}
		repo.On("Lock", mock.Anything, eventID, ticket.ID).Return(ticket, nil)
		repo.On("Update", mock.Anything, ticket).Return(nil)
		filler.On("FillFromWaitlist", mock.Anything, eventID, ticket.ID).Return(0, errors.New("connection reset"))

		svc := NewTicketService(zap.NewNop(), repo, &passthroughTx{})
		svc.SetWaitlistFiller(filler)
		quantity := 3
		updated, err := svc.Update(ctx, eventID, ticket.ID, &domain.TicketTypeUpdateInput{Quantity: &quantity})

		require.NoError(t, err)
		assert.Equal(t, 3, updated.Quantity)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sales end before start", func(t *testing.T) {
		repo := new(MockTicketRepository)
		ticket := &domain.TicketType{ID: uuid.New(), EventID: eventID, Quantity: 10}
		repo.On("Lock", mock.Anything, eventID, ticket.ID).Return(ticket, nil)

		start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		end := start.Add(-time.Hour)
		_, err := NewTicketService(zap.NewNop(), repo, &passthroughTx{}).Update(ctx, eventID, ticket.ID, &domain.TicketTypeUpdateInput{SalesStart: &start, SalesEnd: &end})

		assert.True(t, apperrors.IsValidation(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTicketService_Delete(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	id := uuid.New()

	repo := new(MockTicketRepository)
	repo.On("Delete", mock.Anything, eventID, id).Return(apperrors.Conflict("ticket type has registrations and cannot be deleted"))

	err := NewTicketService(zap.NewNop(), repo, &passthroughTx{}).Delete(ctx, eventID, id)

	assert.True(t, apperrors.IsConflict(err))
}
