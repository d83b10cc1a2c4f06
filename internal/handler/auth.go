package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
)

// AuthService is the part of service.AuthService the handler uses
type AuthService interface {
	Register(ctx context.Context, input *domain.RegisterInput) (*domain.AuthResult, error)
	LoginWithContext(ctx context.Context, input *domain.LoginInput, ipAddress, userAgent string) (*domain.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	LogoutWithContext(ctx context.Context, refreshToken string, actor domain.Actor) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// MembershipLister lists the organizations of a user
type MembershipLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
	orgs        MembershipLister
	session     config.SessionConfig
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, orgs MembershipLister, session config.SessionConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		orgs:        orgs,
		session:     session,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.authService.Register(c.Context(), &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.setSessionCookie(c, result)
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.authService.LoginWithContext(c.Context(), &input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return handleServiceError(c, err)
	}

	h.setSessionCookie(c, result)
	return c.JSON(result)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input domain.RefreshInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.authService.RefreshToken(c.Context(), input.RefreshToken)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.setSessionCookie(c, result)
	return c.JSON(result)
}

// Logout handles POST /api/auth/logout. The refresh token in the body is
// optional; the session cookie is always cleared.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input domain.RefreshInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
		}
	}

	if err := h.authService.LogoutWithContext(c.Context(), input.RefreshToken, middleware.GetActor(c)); err != nil {
		return handleServiceError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.session.Domain,
		Secure:   h.session.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	authType, _ := middleware.GetAuthType(c)
	resp := dto.MeResponse{AuthType: string(authType), Organizations: []domain.Organization{}}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return c.JSON(resp)
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	resp.User = user

	orgs, err := h.orgs.ListByUser(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if orgs != nil {
		resp.Organizations = orgs
	}

	return c.JSON(resp)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, result *domain.AuthResult) {
	if h.session.CookieName == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.session.CookieName,
		Value:    result.AccessToken,
		Path:     "/",
		Domain:   h.session.Domain,
		Secure:   h.session.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  result.ExpiresAt,
	})
}
