package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/payments"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/metrics"
)

// PaymentRepository defines payment repository operations
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, registrationID, id uuid.UUID) (*domain.Payment, error)
	LockByProviderRef(ctx context.Context, provider, ref string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Payment, error)
}

// PaymentService starts payments and applies their outcome to registrations
type PaymentService struct {
	paymentRepo   PaymentRepository
	registrations *RegistrationService
	provider      payments.Provider
	tx            TxRunner
	auditLogger   AuditLogger
	logger        *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	logger *zap.Logger,
	paymentRepo PaymentRepository,
	registrations *RegistrationService,
	provider payments.Provider,
	tx TxRunner,
) *PaymentService {
	return &PaymentService{
		logger:        logger.Named("payment"),
		paymentRepo:   paymentRepo,
		registrations: registrations,
		provider:      provider,
		tx:            tx,
	}
}

// SetAuditLogger sets the audit logger for the payment service
func (s *PaymentService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// List lists the payments of a registration, newest first
func (s *PaymentService) List(ctx context.Context, eventID, registrationID uuid.UUID) ([]domain.Payment, error) {
	if _, err := s.registrations.regRepo.GetByID(ctx, eventID, registrationID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByRegistration(ctx, registrationID)
}

func checkPayable(reg *domain.Registration) error {
	if reg.Status != domain.RegistrationStatusPending {
		return apperrors.Unprocessable("only pending registrations can be paid")
	}
	if reg.Amount <= 0 {
		return apperrors.Unprocessable("registration has nothing to pay")
	}
	if reg.PaymentStatus == domain.PaymentStatusPaid {
		return apperrors.Conflict("registration is already paid")
	}
	return nil
}

// Start opens a checkout with the provider for a pending registration
func (s *PaymentService) Start(ctx context.Context, event *domain.Event, registrationID uuid.UUID) (*domain.Payment, error) {
	reg, err := s.registrations.regRepo.GetByID(ctx, event.ID, registrationID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(reg); err != nil {
		return nil, err
	}

	paymentID := uuid.New()
	checkout, err := s.provider.CreateCheckout(ctx, &payments.CheckoutRequest{
		PaymentID:      paymentID,
		RegistrationID: reg.ID,
		Amount:         reg.Amount,
		Currency:       reg.Currency,
		Description:    fmt.Sprintf("%s registration", event.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:             paymentID,
		EventID:        event.ID,
		RegistrationID: reg.ID,
		Provider:       s.provider.Name(),
		ProviderRef:    checkout.ProviderRef,
		Amount:         reg.Amount,
		Currency:       reg.Currency,
		Status:         domain.PaymentStatusPending,
		CheckoutURL:    checkout.URL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.registrations.lockInEvent(ctx, event.ID, reg.ID)
		if err != nil {
			return err
		}
		if err := checkPayable(locked); err != nil {
			return err
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		locked.PaymentStatus = domain.PaymentStatusPending
		locked.UpdatedAt = now
		return s.registrations.regRepo.Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment(payment.Provider, string(payment.Status))
	return payment, nil
}

// HandleWebhook verifies and applies a provider notification. Deliveries of
// an already applied outcome are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, provider string, body []byte, signature string) error {
	if provider != s.provider.Name() {
		return apperrors.NotFound("payment provider")
	}

	notification, err := s.provider.ParseWebhook(ctx, body, signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return apperrors.Unauthorized("invalid webhook signature")
		}
		return apperrors.BadRequest(err.Error())
	}

	var status domain.PaymentStatus
	switch notification.Status {
	case payments.WebhookStatusPaid:
		status = domain.PaymentStatusPaid
	default:
		status = domain.PaymentStatusFailed
	}

	cs := &changeSet{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.LockByProviderRef(ctx, provider, notification.ProviderRef)
		if err != nil {
			return err
		}
		if payment.Status == status || payment.Status == domain.PaymentStatusRefunded {
			return nil
		}
		if payment.Status == domain.PaymentStatusPaid {
			s.logger.Warn("ignoring webhook for a paid payment",
				zap.String("payment_id", payment.ID.String()),
				zap.String("status", notification.Status),
			)
			return nil
		}

		reg, err := s.registrations.regRepo.Lock(ctx, payment.RegistrationID)
		if err != nil {
			return err
		}
		event, err := s.registrations.eventRepo.Get(ctx, reg.EventID)
		if err != nil {
			return err
		}
		cs.event = event

		return s.applyStatus(ctx, cs, event, reg, payment, status)
	})
	if err != nil {
		return err
	}

	if cs.event != nil {
		metrics.RecordPayment(provider, string(status))
		s.registrations.apply(ctx, cs, domain.SystemActor())
	}
	return nil
}

// applyStatus sets a payment's status and carries it over to the registration.
// reg must be locked.
func (s *PaymentService) applyStatus(ctx context.Context, cs *changeSet, event *domain.Event, reg *domain.Registration, payment *domain.Payment, status domain.PaymentStatus) error {
	now := time.Now()
	from := reg.Status

	payment.Status = status
	payment.UpdatedAt = now

	switch status {
	case domain.PaymentStatusPaid:
		payment.PaidAt = &now
		reg.PaymentStatus = domain.PaymentStatusPaid
		if reg.Status == domain.RegistrationStatusPending {
			if err := s.registrations.transition(ctx, cs, event, reg, domain.RegistrationStatusConfirmed); err != nil {
				return err
			}
		} else if reg.Status == domain.RegistrationStatusCancelled {
			s.logger.Warn("payment received for a cancelled registration",
				zap.String("registration_id", reg.ID.String()),
				zap.String("payment_id", payment.ID.String()),
			)
		}
	case domain.PaymentStatusRefunded:
		payment.RefundedAt = &now
		reg.PaymentStatus = domain.PaymentStatusRefunded
		if domain.CanTransition(reg.Status, domain.RegistrationStatusCancelled) {
			if err := s.registrations.transition(ctx, cs, event, reg, domain.RegistrationStatusCancelled); err != nil {
				return err
			}
		}
	default:
		if reg.PaymentStatus != domain.PaymentStatusPaid {
			reg.PaymentStatus = status
		}
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return err
	}

	reg.UpdatedAt = now
	if err := s.registrations.regRepo.Update(ctx, reg); err != nil {
		return err
	}

	cs.changes = append([]registrationChange{{reg: reg, kind: domain.ChangeUpdated, from: from}}, cs.changes...)
	return nil
}

// Update records a manual payment status change made by an organizer
func (s *PaymentService) Update(ctx context.Context, event *domain.Event, registrationID, paymentID uuid.UUID, input *domain.PaymentUpdateInput, actor domain.Actor) (*domain.Payment, error) {
	if !input.Status.IsValid() {
		return nil, apperrors.Validation("invalid payment status")
	}
	if input.Status == domain.PaymentStatusRefunded {
		return s.Refund(ctx, event, registrationID, paymentID, actor)
	}

	cs := &changeSet{event: event}
	var payment *domain.Payment

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.registrations.lockInEvent(ctx, event.ID, registrationID)
		if err != nil {
			return err
		}
		payment, err = s.paymentRepo.GetByID(ctx, reg.ID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == domain.PaymentStatusRefunded {
			return apperrors.Conflict("payment was refunded")
		}
		if payment.Status == input.Status {
			return nil
		}
		return s.applyStatus(ctx, cs, event, reg, payment, input.Status)
	})
	if err != nil {
		return nil, err
	}

	if len(cs.changes) > 0 {
		metrics.RecordPayment(payment.Provider, string(payment.Status))
		s.registrations.apply(ctx, cs, actor)
	}
	return payment, nil
}

// Refund marks a paid payment refunded and cancels its registration
func (s *PaymentService) Refund(ctx context.Context, event *domain.Event, registrationID, paymentID uuid.UUID, actor domain.Actor) (*domain.Payment, error) {
	cs := &changeSet{event: event}
	var payment *domain.Payment

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.registrations.lockInEvent(ctx, event.ID, registrationID)
		if err != nil {
			return err
		}
		payment, err = s.paymentRepo.GetByID(ctx, reg.ID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusPaid {
			return apperrors.Conflict("only paid payments can be refunded")
		}
		return s.applyStatus(ctx, cs, event, reg, payment, domain.PaymentStatusRefunded)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment(payment.Provider, string(payment.Status))
	s.registrations.apply(ctx, cs, actor)

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        event.OrganizationID,
		action:       domain.AuditActionPaymentRefunded,
		resourceType: domain.AuditResourcePayment,
		resourceID:   ptrUUID(payment.ID),
		description:  fmt.Sprintf("refunded %d %s", payment.Amount, payment.Currency),
		metadata:     map[string]any{"registration_id": registrationID.String()},
	})

	return payment, nil
}
