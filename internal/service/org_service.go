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
	"github.com/eventdesk/eventdesk/api/internal/pkg/id"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

// OrgRepository defines organization repository operations
type OrgRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	Lock(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, org *domain.Organization) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	AddMember(ctx context.Context, member *domain.OrganizationMember) error
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.OrganizationMember, error)
	ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error)
	CountMembersWithRole(ctx context.Context, orgID uuid.UUID, role domain.OrgRole) (int, error)
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole) error
	CreateInvitation(ctx context.Context, invitation *domain.OrganizationInvitation) error
	GetInvitationByToken(ctx context.Context, token string) (*domain.OrganizationInvitation, error)
	AcceptInvitation(ctx context.Context, id uuid.UUID) error
	DeleteInvitation(ctx context.Context, orgID, id uuid.UUID) error
	ListPendingInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error)
	DeleteExpiredInvitations(ctx context.Context) (int64, error)
}

// Membership is the organization a request acts for and the caller's role in it
type Membership struct {
	OrganizationID uuid.UUID
	Role           domain.OrgRole
}

// OrgService handles organizations, their members and invitations
type OrgService struct {
	orgRepo       OrgRepository
	userRepo      UserRepository
	tx            TxRunner
	tasks         TaskDispatcher
	invitationTTL time.Duration
	auditLogger   AuditLogger
	logger        *zap.Logger
}

// NewOrgService creates a new organization service
func NewOrgService(
	logger *zap.Logger,
	orgRepo OrgRepository,
	userRepo UserRepository,
	tx TxRunner,
	dispatcher TaskDispatcher,
	invitationTTL time.Duration,
) *OrgService {
	if invitationTTL <= 0 {
		invitationTTL = defaultInvitationTTL
	}
	return &OrgService{
		logger:        logger.Named("organization"),
		orgRepo:       orgRepo,
		userRepo:      userRepo,
		tx:            tx,
		tasks:         dispatcher,
		invitationTTL: invitationTTL,
	}
}

// SetAuditLogger sets the audit logger for the organization service
func (s *OrgService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// createOrganization creates an organization with a unique slug and makes owner its ADMIN
func createOrganization(ctx context.Context, orgRepo OrgRepository, name string, ownerID uuid.UUID) (*domain.Organization, error) {
	slug := domain.GenerateSlug(name)
	if slug == "" {
		slug = "org"
	}

	exists, err := orgRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		slug = fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
	}

	now := time.Now()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	member := &domain.OrganizationMember{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           domain.OrgRoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := orgRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add admin: %w", err)
	}

	org.Role = domain.OrgRoleAdmin
	return org, nil
}

// Create creates a new organization administered by the caller
func (s *OrgService) Create(ctx context.Context, input *domain.OrganizationInput, actor domain.Actor) (*domain.Organization, error) {
	if actor.UserID == nil {
		return nil, apperrors.Forbidden("only users can create organizations")
	}

	var org *domain.Organization
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		org, err = createOrganization(ctx, s.orgRepo, input.Name, *actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        org.ID,
		action:       domain.AuditActionOrgCreated,
		resourceType: domain.AuditResourceOrganization,
		resourceID:   &org.ID,
		resourceName: org.Name,
		description:  "organization created",
	})

	return org, nil
}

// Get retrieves an organization by ID
func (s *OrgService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

// Update updates an organization
func (s *OrgService) Update(ctx context.Context, id uuid.UUID, input *domain.OrganizationUpdateInput, actor domain.Actor) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	org.UpdatedAt = time.Now()

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        org.ID,
		action:       domain.AuditActionOrgUpdated,
		resourceType: domain.AuditResourceOrganization,
		resourceID:   &org.ID,
		resourceName: org.Name,
		description:  "organization updated",
	})

	return org, nil
}

// ListByUser retrieves the organizations a user belongs to, with the user's role
func (s *OrgService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error) {
	return s.orgRepo.ListByUserID(ctx, userID)
}

// ResolveMembership picks the organization a request acts for. An explicit
// organization must be one the user belongs to; without one, the user's
// first membership is used. Super admins act as SUPER_ADMIN everywhere.
func (s *OrgService) ResolveMembership(ctx context.Context, userID uuid.UUID, superAdmin bool, orgID *uuid.UUID) (*Membership, error) {
	if orgID != nil {
		member, err := s.orgRepo.GetMember(ctx, *orgID, userID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				return nil, err
			}
			if !superAdmin {
				return nil, apperrors.Forbidden("no access to organization")
			}
			if _, err := s.orgRepo.GetByID(ctx, *orgID); err != nil {
				return nil, err
			}
			return &Membership{OrganizationID: *orgID, Role: domain.OrgRoleSuperAdmin}, nil
		}
		return membershipFor(member.OrganizationID, member.Role, superAdmin), nil
	}

	orgs, err := s.orgRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	if len(orgs) == 0 {
		return nil, apperrors.Forbidden("user does not belong to any organization")
	}
	return membershipFor(orgs[0].ID, orgs[0].Role, superAdmin), nil
}

func membershipFor(orgID uuid.UUID, role domain.OrgRole, superAdmin bool) *Membership {
	if superAdmin {
		role = domain.OrgRoleSuperAdmin
	}
	return &Membership{OrganizationID: orgID, Role: role}
}

// ListMembers lists the members of an organization
func (s *OrgService) ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error) {
	return s.orgRepo.ListMembers(ctx, orgID, p)
}

// UpdateMemberRole changes a member's role. The last ADMIN cannot be demoted.
func (s *OrgService) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole, actor domain.Actor) (*domain.OrganizationMember, error) {
	if !role.IsValid() {
		return nil, apperrors.Validation("invalid role")
	}

	var member *domain.OrganizationMember
	var previous domain.OrgRole
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orgRepo.Lock(ctx, orgID); err != nil {
			return err
		}

		var err error
		member, err = s.orgRepo.GetMember(ctx, orgID, userID)
		if err != nil {
			return err
		}
		previous = member.Role
		if previous == role {
			return nil
		}

		if previous == domain.OrgRoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, orgID); err != nil {
				return err
			}
		}

		if err := s.orgRepo.UpdateMemberRole(ctx, orgID, userID, role); err != nil {
			return err
		}
		member.Role = role
		member.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != role {
		recordAudit(s.auditLogger, actor, auditEntry{
			orgID:        orgID,
			action:       domain.AuditActionMemberRoleChanged,
			resourceType: domain.AuditResourceMember,
			resourceID:   &userID,
			description:  fmt.Sprintf("role changed from %s to %s", previous, role),
			metadata:     map[string]any{"from": previous, "to": role},
		})
	}

	return member, nil
}

// RemoveMember removes a member. The last ADMIN cannot be removed.
func (s *OrgService) RemoveMember(ctx context.Context, orgID, userID uuid.UUID, actor domain.Actor) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orgRepo.Lock(ctx, orgID); err != nil {
			return err
		}

		member, err := s.orgRepo.GetMember(ctx, orgID, userID)
		if err != nil {
			return err
		}
		if member.Role == domain.OrgRoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, orgID); err != nil {
				return err
			}
		}

		return s.orgRepo.RemoveMember(ctx, orgID, userID)
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionMemberRemoved,
		resourceType: domain.AuditResourceMember,
		resourceID:   &userID,
		description:  "member removed",
	})

	return nil
}

func (s *OrgService) ensureAnotherAdmin(ctx context.Context, orgID uuid.UUID) error {
	admins, err := s.orgRepo.CountMembersWithRole(ctx, orgID, domain.OrgRoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return apperrors.Conflict("organization must keep at least one admin")
	}
	return nil
}

// CreateInvitation stores an invitation and enqueues the invitation email
func (s *OrgService) CreateInvitation(ctx context.Context, orgID uuid.UUID, input *domain.OrganizationInvitationInput, actor domain.Actor) (*domain.OrganizationInvitation, error) {
	if actor.UserID == nil {
		return nil, apperrors.Forbidden("only users can invite members")
	}
	if !input.Role.IsValid() {
		return nil, apperrors.Validation("invalid role")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		if _, err := s.orgRepo.GetMember(ctx, orgID, existing.ID); err == nil {
			return nil, apperrors.Conflict("user is already a member of this organization")
		} else if !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	token, err := id.NewToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	now := time.Now()
	invitation := &domain.OrganizationInvitation{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		Role:           input.Role,
		InvitedBy:      *actor.UserID,
		Token:          token,
		ExpiresAt:      now.Add(s.invitationTTL),
		CreatedAt:      now,
	}
	if err := s.orgRepo.CreateInvitation(ctx, invitation); err != nil {
		return nil, err
	}

	inviterName := actor.Email
	if inviter, err := s.userRepo.GetByID(ctx, *actor.UserID); err == nil && inviter.Name != "" {
		inviterName = inviter.Name
	}

	if s.tasks != nil {
		err := s.tasks.EnqueueInvitationEmail(ctx, &tasks.InvitationEmailPayload{
			InvitationID:     invitation.ID,
			OrganizationName: org.Name,
			InviterName:      inviterName,
			Email:            invitation.Email,
			Role:             string(invitation.Role),
			Token:            invitation.Token,
			ExpiresAt:        invitation.ExpiresAt,
		})
		if err != nil {
			s.logger.Warn("failed to enqueue invitation email",
				zap.String("invitation_id", invitation.ID.String()),
				zap.Error(err),
			)
		}
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionUserInvited,
		resourceType: domain.AuditResourceInvitation,
		resourceID:   &invitation.ID,
		resourceName: invitation.Email,
		description:  fmt.Sprintf("invited %s as %s", invitation.Email, invitation.Role),
	})

	return invitation, nil
}

// ListInvitations lists the pending invitations of an organization
func (s *OrgService) ListInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error) {
	return s.orgRepo.ListPendingInvitations(ctx, orgID, p)
}

// RevokeInvitation deletes a pending invitation
func (s *OrgService) RevokeInvitation(ctx context.Context, orgID, invitationID uuid.UUID, actor domain.Actor) error {
	if err := s.orgRepo.DeleteInvitation(ctx, orgID, invitationID); err != nil {
		return err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionInviteRevoked,
		resourceType: domain.AuditResourceInvitation,
		resourceID:   &invitationID,
		description:  "invitation revoked",
	})

	return nil
}

// AcceptInvitation adds the user to the inviting organization with the invited role
func (s *OrgService) AcceptInvitation(ctx context.Context, token string, user *domain.User) (*domain.OrganizationMember, error) {
	invitation, err := s.orgRepo.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.AcceptedAt != nil {
		return nil, apperrors.Conflict("invitation has already been accepted")
	}
	if invitation.IsExpired(time.Now()) {
		return nil, apperrors.Unprocessable("invitation has expired")
	}
	if !strings.EqualFold(invitation.Email, user.Email) {
		return nil, apperrors.Forbidden("invitation was sent to another email address")
	}

	now := time.Now()
	member := &domain.OrganizationMember{
		ID:             uuid.New(),
		OrganizationID: invitation.OrganizationID,
		UserID:         user.ID,
		Role:           invitation.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orgRepo.AddMember(ctx, member); err != nil {
			return err
		}
		return s.orgRepo.AcceptInvitation(ctx, invitation.ID)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditLogger, domain.Actor{UserID: &user.ID, Email: user.Email, Type: domain.ActorTypeUser}, auditEntry{
		orgID:        invitation.OrganizationID,
		action:       domain.AuditActionMemberAdded,
		resourceType: domain.AuditResourceMember,
		resourceID:   &user.ID,
		resourceName: user.Email,
		description:  fmt.Sprintf("joined as %s", invitation.Role),
	})

	return member, nil
}

// CleanupExpiredInvitations deletes invitations past their expiry
func (s *OrgService) CleanupExpiredInvitations(ctx context.Context) (int64, error) {
	return s.orgRepo.DeleteExpiredInvitations(ctx)
}
