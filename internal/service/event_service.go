package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// EventRepository defines event repository operations
type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, filter *domain.EventFilter, p pagination.Params) ([]domain.Event, int64, error)
	SlugExists(ctx context.Context, orgID uuid.UUID, slug string) (bool, error)
}

// StatsRepository serves the reporting read model
type StatsRepository interface {
	EventStats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error)
}

// EventService manages events
type EventService struct {
	eventRepo    EventRepository
	reviewerRepo ReviewerRepository
	statsRepo    StatsRepository
	auditLogger  AuditLogger
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepository, reviewerRepo ReviewerRepository, statsRepo StatsRepository) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		reviewerRepo: reviewerRepo,
		statsRepo:    statsRepo,
	}
}

// SetAuditLogger sets the audit logger for the event service
func (s *EventService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// reviewerOnly reports whether the caller only sees events assigned to them
func reviewerOnly(role domain.OrgRole, userID *uuid.UUID) bool {
	return userID != nil && role.Level() > 0 && !role.AtLeast(domain.OrgRoleOrganizer)
}

// Access loads an event of the organization the caller may see. Reviewers
// get a not found error for events they are not assigned to.
func (s *EventService) Access(ctx context.Context, orgID, eventID uuid.UUID, role domain.OrgRole, userID *uuid.UUID) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, orgID, eventID)
	if err != nil {
		return nil, err
	}

	if reviewerOnly(role, userID) {
		assigned, err := s.reviewerRepo.IsAssigned(ctx, eventID, *userID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, apperrors.NotFound("event")
		}
	}

	return event, nil
}

// Get retrieves an event by ID regardless of organization, for background jobs
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.eventRepo.Get(ctx, id)
}

// List lists the events of an organization visible to the caller
func (s *EventService) List(ctx context.Context, filter *domain.EventFilter, role domain.OrgRole, userID *uuid.UUID, p pagination.Params) ([]domain.Event, int64, error) {
	if reviewerOnly(role, userID) {
		filter.ReviewerUserID = userID
	}
	return s.eventRepo.List(ctx, filter, p)
}

// Create creates an event. Without an explicit slug one is generated from the name.
func (s *EventService) Create(ctx context.Context, orgID uuid.UUID, input *domain.EventInput, actor domain.Actor) (*domain.Event, error) {
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return nil, apperrors.Validation("invalid timezone").WithDetail("timezone", input.Timezone)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.Validation("endDate must not be before startDate")
	}

	slug, err := s.uniqueSlug(ctx, orgID, input)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.EventStatusDraft
	}

	now := time.Now()
	event := &domain.Event{
		ID:                   uuid.New(),
		OrganizationID:       orgID,
		Name:                 input.Name,
		Slug:                 slug,
		Description:          input.Description,
		Venue:                input.Venue,
		Timezone:             input.Timezone,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Status:               status,
		Capacity:             input.Capacity,
		PaymentWindowMinutes: input.PaymentWindowMinutes,
		CreatedBy:            actor.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionEventCreated,
		resourceType: domain.AuditResourceEvent,
		resourceID:   &event.ID,
		resourceName: event.Name,
		description:  "event created",
	})

	return event, nil
}

func (s *EventService) uniqueSlug(ctx context.Context, orgID uuid.UUID, input *domain.EventInput) (string, error) {
	if input.Slug != "" {
		slug := domain.GenerateSlug(input.Slug)
		if slug == "" {
			return "", apperrors.Validation("invalid slug")
		}
		exists, err := s.eventRepo.SlugExists(ctx, orgID, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if exists {
			return "", apperrors.Conflict("an event with this slug already exists")
		}
		return slug, nil
	}

	slug := domain.GenerateSlug(input.Name)
	if slug == "" {
		slug = "event"
	}
	exists, err := s.eventRepo.SlugExists(ctx, orgID, slug)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		slug = fmt.Sprintf("%s-%s", slug, strings.ToLower(uuid.New().String()[:8]))
	}
	return slug, nil
}

// Update applies a partial update to an event
func (s *EventService) Update(ctx context.Context, event *domain.Event, input *domain.EventUpdateInput) (*domain.Event, error) {
	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Venue != nil {
		event.Venue = *input.Venue
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, apperrors.Validation("invalid timezone").WithDetail("timezone", *input.Timezone)
		}
		event.Timezone = *input.Timezone
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if input.Capacity != nil {
		event.Capacity = *input.Capacity
	}
	if input.PaymentWindowMinutes != nil {
		event.PaymentWindowMinutes = *input.PaymentWindowMinutes
	}

	if event.EndDate.Before(event.StartDate) {
		return nil, apperrors.Validation("endDate must not be before startDate")
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete deletes an event with everything attached to it
func (s *EventService) Delete(ctx context.Context, event *domain.Event, actor domain.Actor) error {
	if err := s.eventRepo.Delete(ctx, event.OrganizationID, event.ID); err != nil {
		return err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        event.OrganizationID,
		action:       domain.AuditActionEventDeleted,
		resourceType: domain.AuditResourceEvent,
		resourceID:   &event.ID,
		resourceName: event.Name,
		description:  "event deleted",
	})

	return nil
}

// Stats returns the reporting summary of an event
func (s *EventService) Stats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error) {
	return s.statsRepo.EventStats(ctx, eventID)
}
