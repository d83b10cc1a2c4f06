package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eventdesk/eventdesk/api/internal/config"
)

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Recover(zap.New(core), false))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("seat counter went negative")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "req-1", body["requestId"])

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "panic recovered", entry.Message)
	assert.Equal(t, "seat counter went negative", entry.ContextMap()["error"])
}

func TestInitSentryWithoutDSN(t *testing.T) {
	enabled, err := InitSentry(config.SentryConfig{}, "dev")
	require.NoError(t, err)
	assert.False(t, enabled)
}
