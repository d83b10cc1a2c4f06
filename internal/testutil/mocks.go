// Package testutil provides shared test utilities for the EventDesk API.
package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
)

// TestUserMiddleware creates a middleware that sets a JWT user in context.
// Use this in tests to simulate authenticated requests without an organization.
func TestUserMiddleware(userID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyUserID), userID)
		c.Locals(string(middleware.ContextKeyEmail), "test@example.com")
		c.Locals(string(middleware.ContextKeyAuthType), middleware.AuthTypeJWT)
		return c.Next()
	}
}

// TestMemberMiddleware creates a middleware that sets a user acting in an
// organization with the given role, as RequireOrganization would.
func TestMemberMiddleware(userID, orgID uuid.UUID, role domain.OrgRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyUserID), userID)
		c.Locals(string(middleware.ContextKeyEmail), "test@example.com")
		c.Locals(string(middleware.ContextKeyAuthType), middleware.AuthTypeJWT)
		c.Locals(string(middleware.ContextKeyOrgID), orgID)
		c.Locals(string(middleware.ContextKeyRole), role)
		return c.Next()
	}
}

// TestAPIKeyMiddleware creates a middleware that authenticates with key.
// Use this in tests to simulate API key authenticated requests.
func TestAPIKeyMiddleware(key *domain.APIKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyAPIKey), key)
		c.Locals(string(middleware.ContextKeyOrgID), key.OrganizationID)
		c.Locals(string(middleware.ContextKeyAuthType), middleware.AuthTypeAPIKey)
		return c.Next()
	}
}
