package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	newApp := func(origins string) *fiber.App {
		app := fiber.New()
		app.Use(NewCORSMiddleware(CORSConfigFromOrigins(origins)).Handler())
		app.Get("/test", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}

	t.Run("reflects allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://app.eventdesk.io")
		resp, err := newApp("https://app.eventdesk.io, https://admin.eventdesk.io").Test(req)
		require.NoError(t, err)

		assert.Equal(t, "https://app.eventdesk.io", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard subdomain", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://tenant.eventdesk.io")
		resp, err := newApp("*.eventdesk.io").Test(req)
		require.NoError(t, err)

		assert.Equal(t, "https://tenant.eventdesk.io", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://evil.example")
		resp, err := newApp("https://app.eventdesk.io").Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "https://app.eventdesk.io")
		resp, err := newApp("").Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), HeaderOrganizationID)
	})
}
