package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/testutil"
)

// MockAuthService mocks the auth service for testing.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) LoginWithContext(ctx context.Context, input *domain.LoginInput, ip, ua string) (*domain.AuthResult, error) {
	args := m.Called(ctx, input, ip, ua)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) LogoutWithContext(ctx context.Context, refreshToken string, actor domain.Actor) error {
	args := m.Called(ctx, refreshToken, actor)
	return args.Error(0)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockMembershipLister mocks organization listing.
type MockMembershipLister struct {
	mock.Mock
}

func (m *MockMembershipLister) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

var testSession = config.SessionConfig{CookieName: "eventdesk_session", Secure: true}

func setupAuthTestApp(svc *MockAuthService, orgs *MockMembershipLister, userID *uuid.UUID) *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(svc, orgs, testSession, zap.NewNop())

	if userID != nil {
		app.Use(testutil.TestUserMiddleware(*userID))
	}

	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/refresh", h.Refresh)
	app.Post("/api/auth/logout", h.Logout)
	app.Get("/api/auth/me", h.Me)
	return app
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == testSession.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	user := testutil.NewTestUser()
	result := &domain.AuthResult{
		User:         user,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	t.Run("success sets session cookie", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("LoginWithContext", mock.Anything, &domain.LoginInput{Email: "test@example.com", Password: "hunter22"}, mock.Anything, mock.Anything).
			Return(result, nil)

		resp, err := setupAuthTestApp(svc, nil, nil).Test(jsonRequest("POST", "/api/auth/login", map[string]string{
			"email": "test@example.com", "password": "hunter22",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)
		assert.Equal(t, "access", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)

		var body domain.AuthResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "refresh", body.RefreshToken)
		svc.AssertExpectations(t)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("LoginWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.Unauthorized("invalid email or password"))

		resp, err := setupAuthTestApp(svc, nil, nil).Test(jsonRequest("POST", "/api/auth/login", map[string]string{
			"email": "test@example.com", "password": "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
	})

	t.Run("validation error carries field details", func(t *testing.T) {
		svc := new(MockAuthService)

		resp, err := setupAuthTestApp(svc, nil, nil).Test(jsonRequest("POST", "/api/auth/login", map[string]string{
			"email": "not-an-email",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Details)
		svc.AssertNotCalled(t, "LoginWithContext")
	})
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(MockAuthService)
	user := testutil.NewTestUser()
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in *domain.RegisterInput) bool {
		return in.Email == "new@example.com" && in.Name == "New User"
	})).Return(&domain.AuthResult{User: user, AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)

	resp, err := setupAuthTestApp(svc, nil, nil).Test(jsonRequest("POST", "/api/auth/register", map[string]string{
		"email": "new@example.com", "password": "longenough", "name": "New User",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotNil(t, sessionCookie(resp))
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("RefreshToken", mock.Anything, "stale").Return(nil, apperrors.Unauthorized("invalid refresh token"))

	resp, err := setupAuthTestApp(svc, nil, nil).Test(jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refreshToken": "stale",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_Logout(t *testing.T) {
	userID := uuid.New()

	t.Run("clears cookie without body", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("LogoutWithContext", mock.Anything, "", mock.MatchedBy(func(a domain.Actor) bool {
			return a.UserID != nil && *a.UserID == userID
		})).Return(nil)

		resp, err := setupAuthTestApp(svc, nil, &userID).Test(httptest.NewRequest("POST", "/api/auth/logout", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		svc.AssertExpectations(t)
	})

	t.Run("revokes refresh token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("LogoutWithContext", mock.Anything, "refresh", mock.Anything).Return(nil)

		resp, err := setupAuthTestApp(svc, nil, &userID).Test(jsonRequest("POST", "/api/auth/logout", map[string]string{
			"refreshToken": "refresh",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		svc.AssertExpectations(t)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	user := testutil.NewTestUser()
	org := testutil.NewTestOrganization()
	org.Role = domain.OrgRoleAdmin

	svc := new(MockAuthService)
	orgs := new(MockMembershipLister)
	svc.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	orgs.On("ListByUser", mock.Anything, user.ID).Return([]domain.Organization{*org}, nil)

	resp, err := setupAuthTestApp(svc, orgs, &user.ID).Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.MeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, user.Email, body.User.Email)
	assert.Equal(t, "jwt", body.AuthType)
	require.Len(t, body.Organizations, 1)
	assert.Equal(t, domain.OrgRoleAdmin, body.Organizations[0].Role)
}
