// Package tasks defines the background tasks shared by the API, which
// enqueues them, and the worker, which processes them.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// Task types
const (
	TypeInvitationEmail     = "email:invitation"
	TypeRegistrationEmail   = "email:registration"
	TypeRegistrationExpire  = "registration:expire"
	TypeExportRegistrations = "export:registrations"
	TypeInvitationCleanup   = "invitation:cleanup"
	TypeExpireSweep         = "registration:expire_sweep"
	TypeAuditCleanup        = "audit:cleanup"
)

// InvitationEmailPayload is the payload of an invitation email
type InvitationEmailPayload struct {
	InvitationID     uuid.UUID `json:"invitation_id"`
	OrganizationName string    `json:"organization_name"`
	InviterName      string    `json:"inviter_name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// RegistrationEmailPayload is the payload of a registration status email.
// The worker loads the registration so the email reflects its latest state.
type RegistrationEmailPayload struct {
	RegistrationID uuid.UUID            `json:"registration_id"`
	EventID        uuid.UUID            `json:"event_id"`
	Template       domain.EmailTemplate `json:"template"`
}

// RegistrationExpirePayload asks to cancel a registration whose payment window closed
type RegistrationExpirePayload struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	EventID        uuid.UUID `json:"event_id"`
}

// ExportPayload is the payload of a registrations export
type ExportPayload struct {
	ExportID uuid.UUID `json:"export_id"`
	EventID  uuid.UUID `json:"event_id"`
}

// NewInvitationEmailTask creates an invitation email task
func NewInvitationEmailTask(payload *InvitationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invitation email payload: %w", err)
	}
	return asynq.NewTask(TypeInvitationEmail, data, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// NewRegistrationEmailTask creates a registration email task
func NewRegistrationEmailTask(payload *RegistrationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registration email payload: %w", err)
	}
	return asynq.NewTask(TypeRegistrationEmail, data, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// NewRegistrationExpireTask creates a registration expiry task
func NewRegistrationExpireTask(payload *RegistrationExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registration expire payload: %w", err)
	}
	return asynq.NewTask(TypeRegistrationExpire, data, asynq.MaxRetry(10), asynq.Timeout(30*time.Second)), nil
}

// NewExportTask creates a registrations export task
func NewExportTask(payload *ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeExportRegistrations, data, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute)), nil
}

// Client enqueues tasks on the configured queues
type Client struct {
	client *asynq.Client
	queues config.WorkerConfig
}

// NewClient creates a task client
func NewClient(client *asynq.Client, queues config.WorkerConfig) *Client {
	return &Client{client: client, queues: queues}
}

// EnqueueInvitationEmail enqueues an invitation email
func (c *Client) EnqueueInvitationEmail(ctx context.Context, payload *InvitationEmailPayload) error {
	task, err := NewInvitationEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queues.QueueDefault))
	return err
}

// EnqueueRegistrationEmail enqueues a registration email
func (c *Client) EnqueueRegistrationEmail(ctx context.Context, payload *RegistrationEmailPayload) error {
	task, err := NewRegistrationEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queues.QueueDefault))
	return err
}

// EnqueueExport enqueues a registrations export
func (c *Client) EnqueueExport(ctx context.Context, payload *ExportPayload) error {
	task, err := NewExportTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queues.QueueLow))
	return err
}

// ScheduleExpiry enqueues the expiry of a registration to run at at. The
// task id is derived from the registration so rescheduling is a no-op.
func (c *Client) ScheduleExpiry(ctx context.Context, payload *RegistrationExpirePayload, at time.Time) error {
	task, err := NewRegistrationExpireTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queues.QueueCritical),
		asynq.ProcessAt(at),
		asynq.TaskID("expire:"+payload.RegistrationID.String()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
