package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// OrganizationService is the part of service.OrgService the handler uses
type OrganizationService interface {
	Create(ctx context.Context, input *domain.OrganizationInput, actor domain.Actor) (*domain.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	Update(ctx context.Context, id uuid.UUID, input *domain.OrganizationUpdateInput, actor domain.Actor) (*domain.Organization, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error)
	ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error)
	UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole, actor domain.Actor) (*domain.OrganizationMember, error)
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID, actor domain.Actor) error
	CreateInvitation(ctx context.Context, orgID uuid.UUID, input *domain.OrganizationInvitationInput, actor domain.Actor) (*domain.OrganizationInvitation, error)
	ListInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error)
	RevokeInvitation(ctx context.Context, orgID, invitationID uuid.UUID, actor domain.Actor) error
	AcceptInvitation(ctx context.Context, token string, user *domain.User) (*domain.OrganizationMember, error)
}

// UserGetter loads users
type UserGetter interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// OrganizationsHandler handles organization, member and invitation endpoints
type OrganizationsHandler struct {
	orgService OrganizationService
	users      UserGetter
	logger     *zap.Logger
}

// NewOrganizationsHandler creates a new organizations handler
func NewOrganizationsHandler(orgService OrganizationService, users UserGetter, logger *zap.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{
		orgService: orgService,
		users:      users,
		logger:     logger,
	}
}

// GetCurrent handles GET /api/organization
func (h *OrganizationsHandler) GetCurrent(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	org, err := h.orgService.Get(c.Context(), orgID)
	if err != nil {
		return handleServiceError(c, err)
	}

	role, _ := middleware.GetRole(c)
	return c.JSON(dto.CurrentOrganizationResponse{Organization: org, Role: role})
}

// UpdateCurrent handles PUT /api/organization
func (h *OrganizationsHandler) UpdateCurrent(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.OrganizationUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	org, err := h.orgService.Update(c.Context(), orgID, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(org)
}

// List handles GET /api/organizations
func (h *OrganizationsHandler) List(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	orgs, err := h.orgService.ListByUser(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if orgs == nil {
		orgs = []domain.Organization{}
	}
	return c.JSON(fiber.Map{"data": orgs})
}

// Create handles POST /api/organizations
func (h *OrganizationsHandler) Create(c *fiber.Ctx) error {
	var input domain.OrganizationInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	org, err := h.orgService.Create(c.Context(), &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(org)
}

// ListMembers handles GET /api/organization/members
func (h *OrganizationsHandler) ListMembers(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	p := parsePagination(c)
	members, total, err := h.orgService.ListMembers(c.Context(), orgID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, members, total, p)
}

// UpdateMember handles PUT /api/organization/members/:userId
func (h *OrganizationsHandler) UpdateMember(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	userID, err := parseUUIDParam(c, "userId", "user")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.MemberRoleInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	member, err := h.orgService.UpdateMemberRole(c.Context(), orgID, userID, input.Role, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(member)
}

// RemoveMember handles DELETE /api/organization/members/:userId
func (h *OrganizationsHandler) RemoveMember(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	userID, err := parseUUIDParam(c, "userId", "user")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.orgService.RemoveMember(c.Context(), orgID, userID, middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateInvitation handles POST /api/organization/invitations
func (h *OrganizationsHandler) CreateInvitation(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.OrganizationInvitationInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	inv, err := h.orgService.CreateInvitation(c.Context(), orgID, &input, middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// ListInvitations handles GET /api/organization/invitations
func (h *OrganizationsHandler) ListInvitations(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	p := parsePagination(c)
	invs, total, err := h.orgService.ListInvitations(c.Context(), orgID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, invs, total, p)
}

// RevokeInvitation handles DELETE /api/organization/invitations/:id
func (h *OrganizationsHandler) RevokeInvitation(c *fiber.Ctx) error {
	orgID, err := requireOrgID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	id, err := parseUUIDParam(c, "id", "invitation")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.orgService.RevokeInvitation(c.Context(), orgID, id, middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AcceptInvitation handles POST /api/invitations/:token/accept
func (h *OrganizationsHandler) AcceptInvitation(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	user, err := h.users.GetUserByID(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	member, err := h.orgService.AcceptInvitation(c.Context(), c.Params("token"), user)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(member)
}
