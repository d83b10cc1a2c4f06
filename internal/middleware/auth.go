package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/service"
)

// ContextKey type for context keys
type ContextKey string

const (
	// Context keys
	ContextKeyUserID     ContextKey = "userID"
	ContextKeyEmail      ContextKey = "email"
	ContextKeySuperAdmin ContextKey = "superAdmin"
	ContextKeyOrgID      ContextKey = "orgID"
	ContextKeyRole       ContextKey = "role"
	ContextKeyAPIKey     ContextKey = "apiKey"
	ContextKeyAuthType   ContextKey = "authType"
)

// HeaderOrganizationID selects the organization a user acts in
const HeaderOrganizationID = "X-Organization-ID"

// AuthType represents the type of authentication used
type AuthType string

const (
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeJWT    AuthType = "jwt"
	AuthTypeCookie AuthType = "cookie"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateJWT(ctx context.Context, token string) (*domain.JWTClaims, error)
}

// KeyValidator validates raw x-api-key values
type KeyValidator interface {
	Validate(ctx context.Context, rawKey string) (*domain.APIKey, error)
}

// MembershipResolver resolves the organization a user acts in
type MembershipResolver interface {
	ResolveMembership(ctx context.Context, userID uuid.UUID, superAdmin bool, orgID *uuid.UUID) (*service.Membership, error)
}

// AuthMiddleware handles authentication and organization role checks
type AuthMiddleware struct {
	tokens     TokenValidator
	keys       KeyValidator
	members    MembershipResolver
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens TokenValidator, keys KeyValidator, members MembershipResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		keys:       keys,
		members:    members,
		cookieName: cookieName,
	}
}

// Authenticate accepts an x-api-key, a bearer token or the session cookie, in that order
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := extractAPIKey(c); raw != "" {
			key, err := m.keys.Validate(c.Context(), raw)
			if err != nil {
				return deny(c, fiber.StatusUnauthorized, "Invalid API key")
			}
			c.Locals(string(ContextKeyAPIKey), key)
			c.Locals(string(ContextKeyOrgID), key.OrganizationID)
			c.Locals(string(ContextKeyAuthType), AuthTypeAPIKey)
			return c.Next()
		}

		authType := AuthTypeJWT
		token := extractBearerToken(c)
		if token == "" && m.cookieName != "" {
			token = c.Cookies(m.cookieName)
			authType = AuthTypeCookie
		}
		if token == "" {
			return deny(c, fiber.StatusUnauthorized, "Valid authentication required")
		}

		claims, err := m.tokens.ValidateJWT(c.Context(), token)
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "Invalid user ID in token")
		}

		c.Locals(string(ContextKeyUserID), userID)
		c.Locals(string(ContextKeyEmail), claims.Email)
		c.Locals(string(ContextKeySuperAdmin), claims.SuperAdmin)
		c.Locals(string(ContextKeyAuthType), authType)

		return c.Next()
	}
}

// RequireUser rejects API key requests on routes that act for a person
func (m *AuthMiddleware) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetUserID(c); !ok {
			return deny(c, fiber.StatusForbidden, "This endpoint requires a user session")
		}
		return c.Next()
	}
}

// RequireOrganization resolves the organization and the caller's role in it.
// API keys are bound to their organization already.
func (m *AuthMiddleware) RequireOrganization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetAPIKey(c); ok {
			return c.Next()
		}

		userID, ok := GetUserID(c)
		if !ok {
			return deny(c, fiber.StatusUnauthorized, "Valid authentication required")
		}

		var orgID *uuid.UUID
		if header := c.Get(HeaderOrganizationID); header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				return deny(c, fiber.StatusBadRequest, "Invalid organization ID")
			}
			orgID = &id
		}

		membership, err := m.members.ResolveMembership(c.Context(), userID, IsSuperAdmin(c), orgID)
		if err != nil {
			status := fiber.StatusForbidden
			if appErr := apperrors.GetAppError(err); appErr != nil && appErr.StatusCode != fiber.StatusInternalServerError {
				status = appErr.StatusCode
			}
			return deny(c, status, "No access to organization")
		}

		c.Locals(string(ContextKeyOrgID), membership.OrganizationID)
		c.Locals(string(ContextKeyRole), membership.Role)

		return c.Next()
	}
}

// Require checks the caller's organization role, or for API keys the given
// scope. An empty scope closes the route to API keys.
func (m *AuthMiddleware) Require(min domain.OrgRole, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key, ok := GetAPIKey(c); ok {
			if scope == "" || !key.HasScope(scope) {
				return deny(c, fiber.StatusForbidden, "API key lacks the required scope")
			}
			return c.Next()
		}

		role, _ := GetRole(c)
		if !role.AtLeast(min) {
			return deny(c, fiber.StatusForbidden, "Insufficient role")
		}
		return c.Next()
	}
}

// extractAPIKey reads the x-api-key header, or a bearer token carrying an API key
func extractAPIKey(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}

	if token := bearerCredential(c); strings.HasPrefix(token, "evk_") {
		return token
	}

	return ""
}

// extractBearerToken extracts a JWT from the Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	token := bearerCredential(c)
	if strings.HasPrefix(token, "evk_") {
		return ""
	}
	return token
}

func bearerCredential(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   utils.StatusMessage(status),
		"message": message,
	})
}

// GetUserID gets the user ID from context
func GetUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(string(ContextKeyUserID)).(uuid.UUID)
	return userID, ok
}

// GetOrgID gets the organization ID from context
func GetOrgID(c *fiber.Ctx) (uuid.UUID, bool) {
	orgID, ok := c.Locals(string(ContextKeyOrgID)).(uuid.UUID)
	return orgID, ok
}

// GetRole gets the caller's organization role from context
func GetRole(c *fiber.Ctx) (domain.OrgRole, bool) {
	role, ok := c.Locals(string(ContextKeyRole)).(domain.OrgRole)
	return role, ok
}

// GetAPIKey gets the authenticated API key from context
func GetAPIKey(c *fiber.Ctx) (*domain.APIKey, bool) {
	key, ok := c.Locals(string(ContextKeyAPIKey)).(*domain.APIKey)
	return key, ok && key != nil
}

// GetAuthType gets the authentication type from context
func GetAuthType(c *fiber.Ctx) (AuthType, bool) {
	authType, ok := c.Locals(string(ContextKeyAuthType)).(AuthType)
	return authType, ok
}

// IsSuperAdmin reports whether the caller carries the super admin flag
func IsSuperAdmin(c *fiber.Ctx) bool {
	v, _ := c.Locals(string(ContextKeySuperAdmin)).(bool)
	return v
}

// GetActor describes the caller for audit logs
func GetActor(c *fiber.Ctx) domain.Actor {
	actor := domain.Actor{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		RequestID: GetRequestID(c),
	}

	if key, ok := GetAPIKey(c); ok {
		actor.Type = domain.ActorTypeAPIKey
		actor.Email = "api-key:" + key.PublicID
		return actor
	}

	if userID, ok := GetUserID(c); ok {
		actor.UserID = &userID
		actor.Email, _ = c.Locals(string(ContextKeyEmail)).(string)
		actor.Type = domain.ActorTypeUser
	}
	return actor
}
