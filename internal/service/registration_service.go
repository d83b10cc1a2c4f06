package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/metrics"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// RegistrationRepository defines registration repository operations
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error)
	Lock(ctx context.Context, id uuid.UUID) (*domain.Registration, error)
	Update(ctx context.Context, reg *domain.Registration) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, filter *domain.RegistrationFilter, p pagination.Params) ([]domain.Registration, int64, error)
	HasActiveForAttendee(ctx context.Context, eventID, attendeeID uuid.UUID) (bool, error)
	CountSeated(ctx context.Context, eventID uuid.UUID) (int, error)
	NextWaitlisted(ctx context.Context, ticketTypeID uuid.UUID) (*domain.Registration, error)
	NextWaitlistedWithRoom(ctx context.Context, eventID uuid.UUID) (*domain.Registration, error)
	ListOverdueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// EventGetter loads and locks events without an organization scope
type EventGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Lock(ctx context.Context, id uuid.UUID) error
}

// ChangePublisher announces registration changes to live subscribers
type ChangePublisher interface {
	Publish(ctx context.Context, changeType string, reg *domain.Registration)
}

// BookingReleaser cancels the hotel bookings of a registration
type BookingReleaser interface {
	ReleaseForRegistration(ctx context.Context, registrationID uuid.UUID) error
}

// registrationChange is a committed change whose side effects run after the transaction
type registrationChange struct {
	reg  *domain.Registration
	kind string
	from domain.RegistrationStatus
}

type changeSet struct {
	event   *domain.Event
	changes []registrationChange
}

func (c *changeSet) add(reg *domain.Registration, kind string, from domain.RegistrationStatus) {
	c.changes = append(c.changes, registrationChange{reg: reg, kind: kind, from: from})
}

// RegistrationService manages registrations, ticket seats and the waitlist
type RegistrationService struct {
	regRepo       RegistrationRepository
	attendeeRepo  AttendeeRepository
	ticketRepo    TicketRepository
	eventRepo     EventGetter
	tx            TxRunner
	dispatcher    TaskDispatcher
	expiry        ExpiryScheduler
	publisher     ChangePublisher
	bookings      BookingReleaser
	auditLogger   AuditLogger
	paymentWindow time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewRegistrationService creates a new registration service. paymentWindow
// applies to events without their own window.
func NewRegistrationService(
	logger *zap.Logger,
	regRepo RegistrationRepository,
	attendeeRepo AttendeeRepository,
	ticketRepo TicketRepository,
	eventRepo EventGetter,
	tx TxRunner,
	dispatcher TaskDispatcher,
	expiry ExpiryScheduler,
	paymentWindow time.Duration,
) *RegistrationService {
	if paymentWindow <= 0 {
		paymentWindow = 30 * time.Minute
	}
	return &RegistrationService{
		logger:        logger.Named("registration"),
		regRepo:       regRepo,
		attendeeRepo:  attendeeRepo,
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		tx:            tx,
		dispatcher:    dispatcher,
		expiry:        expiry,
		paymentWindow: paymentWindow,
		now:           time.Now,
	}
}

// SetAuditLogger sets the audit logger for the registration service
func (s *RegistrationService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// SetPublisher sets where registration changes are announced
func (s *RegistrationService) SetPublisher(p ChangePublisher) {
	s.publisher = p
}

// SetBookingReleaser sets what cancels hotel bookings of cancelled registrations
func (s *RegistrationService) SetBookingReleaser(b BookingReleaser) {
	s.bookings = b
}

// Create registers an attendee for a ticket type. A seat is taken when one
// is left on both the ticket and the event, otherwise the registration is
// waitlisted.
func (s *RegistrationService) Create(ctx context.Context, event *domain.Event, input *domain.RegistrationInput, actor domain.Actor) (*domain.Registration, error) {
	cs := &changeSet{event: event}
	var reg *domain.Registration

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		attendee, err := s.resolveAttendee(ctx, event.ID, input)
		if err != nil {
			return err
		}

		if err := s.lockCapacity(ctx, event); err != nil {
			return err
		}
		ticket, err := s.ticketRepo.Lock(ctx, event.ID, input.TicketTypeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Unprocessable("ticket type does not belong to this event")
			}
			return err
		}

		now := s.now()
		if !ticket.OnSale(now) {
			return apperrors.Unprocessable("ticket type is not on sale")
		}

		active, err := s.regRepo.HasActiveForAttendee(ctx, event.ID, attendee.ID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.Conflict("attendee already has an active registration for this event")
		}

		seat, err := s.seatLeft(ctx, event, ticket)
		if err != nil {
			return err
		}

		reg = &domain.Registration{
			ID:            uuid.New(),
			EventID:       event.ID,
			AttendeeID:    attendee.ID,
			TicketTypeID:  ticket.ID,
			Status:        domain.RegistrationStatusWaitlisted,
			PaymentStatus: domain.PaymentStatusUnpaid,
			Amount:        ticket.Price,
			Currency:      ticket.Currency,
			Notes:         input.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if seat {
			if err := s.ticketRepo.AdjustSold(ctx, ticket.ID, 1); err != nil {
				return err
			}
			ticket.Sold++
			s.seat(reg, event, ticket, now)
		}

		if err := s.regRepo.Create(ctx, reg); err != nil {
			return err
		}

		reg.Attendee = attendee
		reg.TicketType = ticket
		cs.add(reg, domain.ChangeCreated, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.apply(ctx, cs, actor)
	return reg, nil
}

func (s *RegistrationService) resolveAttendee(ctx context.Context, eventID uuid.UUID, input *domain.RegistrationInput) (*domain.Attendee, error) {
	if input.AttendeeID != nil {
		a, err := s.attendeeRepo.GetByID(ctx, eventID, *input.AttendeeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.Unprocessable("attendee does not belong to this event")
			}
			return nil, err
		}
		return a, nil
	}

	if input.Attendee == nil {
		return nil, apperrors.Validation("attendeeId or attendee is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Attendee.Email))
	existing, err := s.attendeeRepo.GetByEmail(ctx, eventID, email)
	if err == nil {
		return existing, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	a := newAttendee(eventID, input.Attendee)
	if err := s.attendeeRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// lockCapacity serializes seat changes of an event with a capacity. It is
// taken before any ticket type lock.
func (s *RegistrationService) lockCapacity(ctx context.Context, event *domain.Event) error {
	if event.Capacity <= 0 {
		return nil
	}
	return s.eventRepo.Lock(ctx, event.ID)
}

// seatLeft reports whether the locked ticket and the event both have room.
// The event must be locked through lockCapacity.
func (s *RegistrationService) seatLeft(ctx context.Context, event *domain.Event, ticket *domain.TicketType) (bool, error) {
	if ticket.SoldOut() {
		return false, nil
	}
	if event.Capacity > 0 {
		seated, err := s.regRepo.CountSeated(ctx, event.ID)
		if err != nil {
			return false, err
		}
		if seated >= event.Capacity {
			return false, nil
		}
	}
	return true, nil
}

// seat moves a registration that just got a seat into its active state
func (s *RegistrationService) seat(reg *domain.Registration, event *domain.Event, ticket *domain.TicketType, now time.Time) {
	if ticket.IsFree() {
		reg.Status = domain.RegistrationStatusConfirmed
		reg.ExpiresAt = nil
		return
	}
	reg.Status = domain.RegistrationStatusPending
	if reg.PaymentStatus != domain.PaymentStatusPaid {
		expiresAt := now.Add(event.PaymentWindow(s.paymentWindow))
		reg.ExpiresAt = &expiresAt
	}
}

// Get retrieves a registration with its attendee and ticket type
func (s *RegistrationService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error) {
	return s.regRepo.GetByID(ctx, eventID, id)
}

// List lists registrations of an event
func (s *RegistrationService) List(ctx context.Context, filter *domain.RegistrationFilter, p pagination.Params) ([]domain.Registration, int64, error) {
	return s.regRepo.List(ctx, filter, p)
}

// lockInEvent locks a registration and checks that it belongs to the event
func (s *RegistrationService) lockInEvent(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error) {
	reg, err := s.regRepo.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.EventID != eventID {
		return nil, apperrors.NotFound("registration")
	}
	return reg, nil
}

// Update changes notes and status of a registration
func (s *RegistrationService) Update(ctx context.Context, event *domain.Event, id uuid.UUID, input *domain.RegistrationUpdateInput, actor domain.Actor) (*domain.Registration, error) {
	cs := &changeSet{event: event}
	var reg *domain.Registration

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lockInEvent(ctx, event.ID, id)
		if err != nil {
			return err
		}

		from := reg.Status
		if input.Status != nil {
			if err := s.transition(ctx, cs, event, reg, *input.Status); err != nil {
				return err
			}
		}
		if input.Notes != nil {
			reg.Notes = *input.Notes
		}
		reg.UpdatedAt = s.now()

		if err := s.regRepo.Update(ctx, reg); err != nil {
			return err
		}

		kind := domain.ChangeUpdated
		if reg.Status == domain.RegistrationStatusCheckedIn && from != reg.Status {
			kind = domain.ChangeCheckedIn
		}
		cs.changes = append([]registrationChange{{reg: reg, kind: kind, from: from}}, cs.changes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.apply(ctx, cs, actor)
	return reg, nil
}

// CheckIn marks a confirmed registration as checked in
func (s *RegistrationService) CheckIn(ctx context.Context, event *domain.Event, id uuid.UUID, actor domain.Actor) (*domain.Registration, error) {
	status := domain.RegistrationStatusCheckedIn
	return s.Update(ctx, event, id, &domain.RegistrationUpdateInput{Status: &status}, actor)
}

// transition moves reg to status, keeping ticket seats and the waitlist in
// step. The caller persists reg.
func (s *RegistrationService) transition(ctx context.Context, cs *changeSet, event *domain.Event, reg *domain.Registration, to domain.RegistrationStatus) error {
	from := reg.Status
	if from == to {
		return nil
	}
	if !domain.CanTransition(from, to) {
		return apperrors.Unprocessable(fmt.Sprintf("cannot change registration status from %s to %s", from, to))
	}

	now := s.now()

	switch {
	case from.HoldsSeat() && !to.HoldsSeat():
		if err := s.releaseSeat(ctx, cs, event, reg.TicketTypeID); err != nil {
			return err
		}
	case !from.HoldsSeat() && to.HoldsSeat():
		if err := s.lockCapacity(ctx, event); err != nil {
			return err
		}
		ticket, err := s.ticketRepo.Lock(ctx, event.ID, reg.TicketTypeID)
		if err != nil {
			return err
		}
		seat, err := s.seatLeft(ctx, event, ticket)
		if err != nil {
			return err
		}
		if !seat {
			return apperrors.Conflict("no seats left for this ticket type")
		}
		if err := s.ticketRepo.AdjustSold(ctx, ticket.ID, 1); err != nil {
			return err
		}
	}

	reg.Status = to
	switch to {
	case domain.RegistrationStatusPending:
		if reg.PaymentStatus != domain.PaymentStatusPaid && reg.Amount > 0 {
			expiresAt := now.Add(event.PaymentWindow(s.paymentWindow))
			reg.ExpiresAt = &expiresAt
		}
	case domain.RegistrationStatusConfirmed:
		reg.ExpiresAt = nil
		reg.CheckedInAt = nil
	case domain.RegistrationStatusCheckedIn:
		reg.CheckedInAt = &now
	case domain.RegistrationStatusWaitlisted:
		reg.ExpiresAt = nil
	case domain.RegistrationStatusCancelled:
		reg.ExpiresAt = nil
		reg.CancelledAt = &now
		if s.bookings != nil {
			if err := s.bookings.ReleaseForRegistration(ctx, reg.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// releaseSeat gives a seat back and hands it to the oldest waitlisted
// registration of the same ticket type. When nobody waits for that ticket
// and the event has a capacity, the freed event seat goes to the oldest
// registration waiting on a ticket type that still has seats.
func (s *RegistrationService) releaseSeat(ctx context.Context, cs *changeSet, event *domain.Event, ticketTypeID uuid.UUID) error {
	if err := s.lockCapacity(ctx, event); err != nil {
		return err
	}
	ticket, err := s.ticketRepo.Lock(ctx, event.ID, ticketTypeID)
	if err != nil {
		return err
	}
	if err := s.ticketRepo.AdjustSold(ctx, ticket.ID, -1); err != nil {
		return err
	}
	if ticket.Sold > 0 {
		ticket.Sold--
	}

	promoted, err := s.promoteNext(ctx, cs, event, ticket)
	if err != nil || promoted || event.Capacity <= 0 {
		return err
	}

	next, err := s.regRepo.NextWaitlistedWithRoom(ctx, event.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	other, err := s.ticketRepo.Lock(ctx, event.ID, next.TicketTypeID)
	if err != nil {
		return err
	}
	if other.SoldOut() {
		return nil
	}
	return s.promote(ctx, cs, event, other, next)
}

// promoteNext seats the oldest waitlisted registration of a locked ticket
// type. It reports false when nobody is waiting.
func (s *RegistrationService) promoteNext(ctx context.Context, cs *changeSet, event *domain.Event, ticket *domain.TicketType) (bool, error) {
	next, err := s.regRepo.NextWaitlisted(ctx, ticket.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := s.promote(ctx, cs, event, ticket, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RegistrationService) promote(ctx context.Context, cs *changeSet, event *domain.Event, ticket *domain.TicketType, next *domain.Registration) error {
	if err := s.ticketRepo.AdjustSold(ctx, ticket.ID, 1); err != nil {
		return err
	}
	ticket.Sold++

	now := s.now()
	from := next.Status
	s.seat(next, event, ticket, now)
	next.UpdatedAt = now
	if err := s.regRepo.Update(ctx, next); err != nil {
		return err
	}

	cs.add(next, domain.ChangeUpdated, from)
	return nil
}

// FillFromWaitlist seats waitlisted registrations of a ticket type, oldest
// first, while the ticket and the event have room. It returns how many were
// promoted.
func (s *RegistrationService) FillFromWaitlist(ctx context.Context, eventID, ticketTypeID uuid.UUID) (int, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	cs := &changeSet{event: event}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.lockCapacity(ctx, event); err != nil {
			return err
		}
		ticket, err := s.ticketRepo.Lock(ctx, event.ID, ticketTypeID)
		if err != nil {
			return err
		}

		for {
			seat, err := s.seatLeft(ctx, event, ticket)
			if err != nil || !seat {
				return err
			}
			promoted, err := s.promoteNext(ctx, cs, event, ticket)
			if err != nil || !promoted {
				return err
			}
		}
	})
	if err != nil {
		return 0, err
	}

	s.apply(ctx, cs, domain.SystemActor())
	return len(cs.changes), nil
}

// Delete removes a registration, releasing its seat and hotel bookings
func (s *RegistrationService) Delete(ctx context.Context, event *domain.Event, id uuid.UUID, actor domain.Actor) error {
	cs := &changeSet{event: event}
	var reg *domain.Registration

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lockInEvent(ctx, event.ID, id)
		if err != nil {
			return err
		}

		if reg.Status.HoldsSeat() {
			if err := s.releaseSeat(ctx, cs, event, reg.TicketTypeID); err != nil {
				return err
			}
		}
		if s.bookings != nil {
			if err := s.bookings.ReleaseForRegistration(ctx, reg.ID); err != nil {
				return err
			}
		}

		return s.regRepo.Delete(ctx, event.ID, reg.ID)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.ChangeDeleted, reg)
	}
	s.apply(ctx, cs, actor)
	return nil
}

// Expire cancels a registration whose payment window closed. Registrations
// that were paid, confirmed or removed in the meantime are left alone.
func (s *RegistrationService) Expire(ctx context.Context, id uuid.UUID) error {
	cs := &changeSet{}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.regRepo.Lock(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		if !reg.IsPaymentOverdue(s.now()) {
			return nil
		}

		event, err := s.eventRepo.Get(ctx, reg.EventID)
		if err != nil {
			return err
		}
		cs.event = event

		from := reg.Status
		if err := s.transition(ctx, cs, event, reg, domain.RegistrationStatusCancelled); err != nil {
			return err
		}
		reg.UpdatedAt = s.now()
		if err := s.regRepo.Update(ctx, reg); err != nil {
			return err
		}

		cs.changes = append([]registrationChange{{reg: reg, kind: domain.ChangeUpdated, from: from}}, cs.changes...)
		return nil
	})
	if err != nil {
		return err
	}

	if cs.event != nil {
		s.logger.Info("registration expired", zap.String("registration_id", id.String()))
		s.apply(ctx, cs, domain.SystemActor())
	}
	return nil
}

// SweepOverdue expires up to limit registrations whose payment window closed
// without their expiry message being processed
func (s *RegistrationService) SweepOverdue(ctx context.Context, limit int) (int, error) {
	ids, err := s.regRepo.ListOverdueIDs(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if err := s.Expire(ctx, id); err != nil {
			s.logger.Warn("failed to expire registration", zap.String("registration_id", id.String()), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// apply runs the side effects of committed changes: metrics, live updates,
// emails, expiry scheduling and audit logs
func (s *RegistrationService) apply(ctx context.Context, cs *changeSet, actor domain.Actor) {
	for _, c := range cs.changes {
		reg := c.reg
		statusChanged := c.from != reg.Status

		if c.kind == domain.ChangeCreated {
			metrics.RecordRegistration(string(reg.Status))
		} else if statusChanged {
			metrics.RecordTransition(string(c.from), string(reg.Status))
		}

		if s.publisher != nil {
			s.publisher.Publish(ctx, c.kind, reg)
		}

		if !statusChanged {
			continue
		}

		if tmpl, ok := domain.RegistrationEmailFor(reg.Status); ok && s.dispatcher != nil {
			err := s.dispatcher.EnqueueRegistrationEmail(ctx, &tasks.RegistrationEmailPayload{
				RegistrationID: reg.ID,
				EventID:        reg.EventID,
				Template:       tmpl,
			})
			if err != nil {
				s.logger.Warn("failed to enqueue registration email",
					zap.String("registration_id", reg.ID.String()), zap.Error(err))
			}
		}

		if reg.Status == domain.RegistrationStatusPending && reg.ExpiresAt != nil && s.expiry != nil {
			err := s.expiry.ScheduleExpiry(ctx, &tasks.RegistrationExpirePayload{
				RegistrationID: reg.ID,
				EventID:        reg.EventID,
			}, *reg.ExpiresAt)
			if err != nil {
				s.logger.Warn("failed to schedule registration expiry",
					zap.String("registration_id", reg.ID.String()), zap.Error(err))
			}
		}

		if c.kind != domain.ChangeCreated && cs.event != nil {
			recordAudit(s.auditLogger, actor, auditEntry{
				orgID:        cs.event.OrganizationID,
				action:       domain.AuditActionRegistrationStatusChanged,
				resourceType: domain.AuditResourceRegistration,
				resourceID:   ptrUUID(reg.ID),
				description:  fmt.Sprintf("registration status changed from %s to %s", c.from, reg.Status),
				metadata: map[string]any{
					"event_id": reg.EventID.String(),
					"from":     string(c.from),
					"to":       string(reg.Status),
				},
			})
		}
	}
}
