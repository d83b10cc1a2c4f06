package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/mailer"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/metrics"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// RegistrationLoader loads a registration with its attendee and ticket type
type RegistrationLoader interface {
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error)
}

// EventLoader loads an event
type EventLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// EmailWorker renders and sends transactional emails
type EmailWorker struct {
	logger        *zap.Logger
	sender        mailer.Sender
	registrations RegistrationLoader
	events        EventLoader
	publicURL     string
}

// NewEmailWorker creates a new email worker
func NewEmailWorker(
	logger *zap.Logger,
	sender mailer.Sender,
	registrations RegistrationLoader,
	events EventLoader,
	publicURL string,
) *EmailWorker {
	return &EmailWorker{
		logger:        logger.Named("email"),
		sender:        sender,
		registrations: registrations,
		events:        events,
		publicURL:     strings.TrimRight(publicURL, "/"),
	}
}

// RegisterHandlers registers the email task handlers
func (w *EmailWorker) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeInvitationEmail, w.HandleInvitationEmail)
	mux.HandleFunc(tasks.TypeRegistrationEmail, w.HandleRegistrationEmail)
}

// HandleInvitationEmail sends an organization invitation
func (w *EmailWorker) HandleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var payload tasks.InvitationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	msg, err := mailer.Render(domain.EmailInvitation, payload.Email, mailer.InvitationData{
		OrganizationName: payload.OrganizationName,
		InviterName:      payload.InviterName,
		Role:             payload.Role,
		AcceptURL:        w.publicURL + "/invitations/" + payload.Token,
		ExpiresAt:        payload.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	err = w.sender.Send(ctx, msg)
	metrics.RecordEmail(string(domain.EmailInvitation), err)
	if err != nil {
		return err
	}

	w.logger.Info("invitation email sent",
		zap.String("invitation_id", payload.InvitationID.String()),
	)
	return nil
}

// HandleRegistrationEmail sends the email matching a registration status.
// Registrations deleted since the task was queued are skipped.
func (w *EmailWorker) HandleRegistrationEmail(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RegistrationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	reg, err := w.registrations.GetByID(ctx, payload.EventID, payload.RegistrationID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			w.logger.Debug("skipping email of removed registration",
				zap.String("registration_id", payload.RegistrationID.String()),
			)
			return nil
		}
		return err
	}
	if reg.Attendee == nil || reg.Attendee.Email == "" {
		return nil
	}

	event, err := w.events.Get(ctx, payload.EventID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	msg, err := mailer.Render(payload.Template, reg.Attendee.Email, registrationData(event, reg))
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	err = w.sender.Send(ctx, msg)
	metrics.RecordEmail(string(payload.Template), err)
	if err != nil {
		return err
	}

	w.logger.Info("registration email sent",
		zap.String("registration_id", reg.ID.String()),
		zap.String("template", string(payload.Template)),
	)
	return nil
}

func registrationData(event *domain.Event, reg *domain.Registration) mailer.RegistrationData {
	loc := event.Location()

	data := mailer.RegistrationData{
		AttendeeName: strings.TrimSpace(reg.Attendee.FirstName + " " + reg.Attendee.LastName),
		EventName:    event.Name,
		Venue:        event.Venue,
		StartDate:    event.StartDate.In(loc),
		Amount:       mailer.FormatAmount(reg.Amount, reg.Currency),
	}
	if reg.TicketType != nil {
		data.TicketName = reg.TicketType.Name
	}
	if reg.ExpiresAt != nil {
		at := reg.ExpiresAt.In(loc)
		data.ExpiresAt = &at
	}
	return data
}
