package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// ReviewerRepository defines reviewer assignment operations
type ReviewerRepository interface {
	Create(ctx context.Context, rv *domain.Reviewer) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Reviewer, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error)
	IsAssigned(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// MemberGetter looks up organization memberships
type MemberGetter interface {
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.OrganizationMember, error)
}

// ReviewerService assigns organization members to review events
type ReviewerService struct {
	reviewerRepo ReviewerRepository
	members      MemberGetter
	trackRepo    TrackRepository
}

// NewReviewerService creates a new reviewer service
func NewReviewerService(reviewerRepo ReviewerRepository, members MemberGetter, trackRepo TrackRepository) *ReviewerService {
	return &ReviewerService{
		reviewerRepo: reviewerRepo,
		members:      members,
		trackRepo:    trackRepo,
	}
}

// Assign makes an organization member a reviewer of the event
func (s *ReviewerService) Assign(ctx context.Context, event *domain.Event, input *domain.ReviewerInput) (*domain.Reviewer, error) {
	if _, err := s.members.GetMember(ctx, event.OrganizationID, input.UserID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unprocessable("user is not a member of the organization")
		}
		return nil, err
	}

	if input.TrackID != nil {
		if _, err := s.trackRepo.GetByID(ctx, event.ID, *input.TrackID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.Unprocessable("track does not belong to this event")
			}
			return nil, err
		}
	}

	rv := &domain.Reviewer{
		ID:        uuid.New(),
		EventID:   event.ID,
		UserID:    input.UserID,
		TrackID:   input.TrackID,
		CreatedAt: time.Now(),
	}
	if err := s.reviewerRepo.Create(ctx, rv); err != nil {
		return nil, err
	}

	return s.reviewerRepo.GetByID(ctx, event.ID, rv.ID)
}

// List lists the reviewers of an event
func (s *ReviewerService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error) {
	return s.reviewerRepo.List(ctx, eventID, p)
}

// Remove removes a reviewer assignment
func (s *ReviewerService) Remove(ctx context.Context, eventID, id uuid.UUID) error {
	return s.reviewerRepo.Delete(ctx, eventID, id)
}
