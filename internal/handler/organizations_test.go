package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/testutil"
)

// MockOrgService mocks the org service for testing
type MockOrgService struct {
	mock.Mock
}

func (m *MockOrgService) Create(ctx context.Context, input *domain.OrganizationInput, actor domain.Actor) (*domain.Organization, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgService) Update(ctx context.Context, id uuid.UUID, input *domain.OrganizationUpdateInput, actor domain.Actor) (*domain.Organization, error) {
	args := m.Called(ctx, id, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

func (m *MockOrgService) ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error) {
	args := m.Called(ctx, orgID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.OrganizationMember), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrgService) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole, actor domain.Actor) (*domain.OrganizationMember, error) {
	args := m.Called(ctx, orgID, userID, role, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationMember), args.Error(1)
}

func (m *MockOrgService) RemoveMember(ctx context.Context, orgID, userID uuid.UUID, actor domain.Actor) error {
	return m.Called(ctx, orgID, userID, actor).Error(0)
}

func (m *MockOrgService) CreateInvitation(ctx context.Context, orgID uuid.UUID, input *domain.OrganizationInvitationInput, actor domain.Actor) (*domain.OrganizationInvitation, error) {
	args := m.Called(ctx, orgID, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationInvitation), args.Error(1)
}

func (m *MockOrgService) ListInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error) {
	args := m.Called(ctx, orgID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.OrganizationInvitation), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrgService) RevokeInvitation(ctx context.Context, orgID, invitationID uuid.UUID, actor domain.Actor) error {
	return m.Called(ctx, orgID, invitationID, actor).Error(0)
}

func (m *MockOrgService) AcceptInvitation(ctx context.Context, token string, user *domain.User) (*domain.OrganizationMember, error) {
	args := m.Called(ctx, token, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationMember), args.Error(1)
}

func setupOrgTestApp(svc *MockOrgService, users *MockAuthService, userID, orgID uuid.UUID, role domain.OrgRole) *fiber.App {
	app := fiber.New()
	h := NewOrganizationsHandler(svc, users, zap.NewNop())

	app.Use(testutil.TestMemberMiddleware(userID, orgID, role))
	app.Get("/api/organization", h.GetCurrent)
	app.Put("/api/organization", h.UpdateCurrent)
	app.Get("/api/organizations", h.List)
	app.Post("/api/organizations", h.Create)
	app.Get("/api/organization/members", h.ListMembers)
	app.Put("/api/organization/members/:userId", h.UpdateMember)
	app.Delete("/api/organization/members/:userId", h.RemoveMember)
	app.Post("/api/organization/invitations", h.CreateInvitation)
	app.Get("/api/organization/invitations", h.ListInvitations)
	app.Delete("/api/organization/invitations/:id", h.RevokeInvitation)
	app.Post("/api/invitations/:token/accept", h.AcceptInvitation)
	return app
}

func TestOrganizationsHandler_GetCurrent(t *testing.T) {
	org := testutil.NewTestOrganization()
	svc := new(MockOrgService)
	svc.On("Get", mock.Anything, org.ID).Return(org, nil)

	resp, err := setupOrgTestApp(svc, nil, uuid.New(), org.ID, domain.OrgRoleOrganizer).
		Test(httptest.NewRequest("GET", "/api/organization", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.CurrentOrganizationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, org.ID, body.ID)
	assert.Equal(t, domain.OrgRoleOrganizer, body.Role)
}

func TestOrganizationsHandler_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := new(MockOrgService)
		org := testutil.NewTestOrganization()
		svc.On("Create", mock.Anything, &domain.OrganizationInput{Name: "Gopher Events"}, mock.MatchedBy(func(a domain.Actor) bool {
			return a.UserID != nil && *a.UserID == userID
		})).Return(org, nil)

		resp, err := setupOrgTestApp(svc, nil, userID, uuid.New(), domain.OrgRoleAdmin).
			Test(jsonRequest("POST", "/api/organizations", map[string]string{"name": "Gopher Events"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("name too short", func(t *testing.T) {
		svc := new(MockOrgService)

		resp, err := setupOrgTestApp(svc, nil, userID, uuid.New(), domain.OrgRoleAdmin).
			Test(jsonRequest("POST", "/api/organizations", map[string]string{"name": "x"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Create")
	})
}

func TestOrganizationsHandler_ListMembers(t *testing.T) {
	orgID := uuid.New()
	svc := new(MockOrgService)
	members := []domain.OrganizationMember{
		{ID: uuid.New(), OrganizationID: orgID, UserID: uuid.New(), Role: domain.OrgRoleAdmin, CreatedAt: time.Now()},
	}
	svc.On("ListMembers", mock.Anything, orgID, pagination.Params{Limit: 1, Offset: 0}).Return(members, int64(3), nil)

	resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
		Test(httptest.NewRequest("GET", "/api/organization/members?limit=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body pagination.Page[domain.OrganizationMember]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, int64(3), body.TotalCount)
	assert.True(t, body.HasMore)
}

func TestOrganizationsHandler_UpdateMember(t *testing.T) {
	orgID := uuid.New()
	memberID := uuid.New()

	t.Run("last admin cannot be demoted", func(t *testing.T) {
		svc := new(MockOrgService)
		svc.On("UpdateMemberRole", mock.Anything, orgID, memberID, domain.OrgRoleReviewer, mock.Anything).
			Return(nil, apperrors.Conflict("organization must keep at least one admin"))

		resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
			Test(jsonRequest("PUT", "/api/organization/members/"+memberID.String(), map[string]string{"role": "REVIEWER"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := new(MockOrgService)

		resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
			Test(jsonRequest("PUT", "/api/organization/members/"+memberID.String(), map[string]string{"role": "OWNER"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid user id", func(t *testing.T) {
		svc := new(MockOrgService)

		resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
			Test(jsonRequest("PUT", "/api/organization/members/nope", map[string]string{"role": "ADMIN"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrganizationsHandler_RemoveMember(t *testing.T) {
	orgID := uuid.New()
	memberID := uuid.New()
	svc := new(MockOrgService)
	svc.On("RemoveMember", mock.Anything, orgID, memberID, mock.Anything).Return(nil)

	resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
		Test(httptest.NewRequest("DELETE", "/api/organization/members/"+memberID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestOrganizationsHandler_Invitations(t *testing.T) {
	orgID := uuid.New()

	t.Run("create", func(t *testing.T) {
		svc := new(MockOrgService)
		inv := &domain.OrganizationInvitation{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Email:          "new@example.com",
			Role:           domain.OrgRoleReviewer,
			ExpiresAt:      time.Now().Add(7 * 24 * time.Hour),
		}
		svc.On("CreateInvitation", mock.Anything, orgID, &domain.OrganizationInvitationInput{
			Email: "new@example.com", Role: domain.OrgRoleReviewer,
		}, mock.Anything).Return(inv, nil)

		resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
			Test(jsonRequest("POST", "/api/organization/invitations", map[string]string{
				"email": "new@example.com", "role": "REVIEWER",
			}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("revoke unknown", func(t *testing.T) {
		svc := new(MockOrgService)
		id := uuid.New()
		svc.On("RevokeInvitation", mock.Anything, orgID, id, mock.Anything).Return(apperrors.NotFound("invitation"))

		resp, err := setupOrgTestApp(svc, nil, uuid.New(), orgID, domain.OrgRoleAdmin).
			Test(httptest.NewRequest("DELETE", "/api/organization/invitations/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("accept", func(t *testing.T) {
		svc := new(MockOrgService)
		users := new(MockAuthService)
		user := testutil.NewTestUser()
		member := &domain.OrganizationMember{ID: uuid.New(), OrganizationID: orgID, UserID: user.ID, Role: domain.OrgRoleReviewer}
		users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		svc.On("AcceptInvitation", mock.Anything, "tok123", user).Return(member, nil)

		resp, err := setupOrgTestApp(svc, users, user.ID, orgID, domain.OrgRoleSubmitter).
			Test(httptest.NewRequest("POST", "/api/invitations/tok123/accept", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("accept expired", func(t *testing.T) {
		svc := new(MockOrgService)
		users := new(MockAuthService)
		user := testutil.NewTestUser()
		users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		svc.On("AcceptInvitation", mock.Anything, "old", user).Return(nil, apperrors.Unprocessable("invitation has expired"))

		resp, err := setupOrgTestApp(svc, users, user.ID, orgID, domain.OrgRoleSubmitter).
			Test(httptest.NewRequest("POST", "/api/invitations/old/accept", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}
