package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error { return nil }

func downCheck(context.Context) error { return errors.New("connection refused") }

func TestNewHealthHandler(t *testing.T) {
	t.Run("start time is set to creation time", func(t *testing.T) {
		before := time.Now()
		handler := NewHealthHandler(nil, "1.0.0")
		after := time.Now()

		require.NotNil(t, handler)
		assert.NotNil(t, handler.checks)
		assert.True(t, handler.startTime.After(before) || handler.startTime.Equal(before))
		assert.True(t, handler.startTime.Before(after) || handler.startTime.Equal(after))
	})
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(map[string]Check{"postgres": okCheck, "redis": okCheck}, "1.0.0")
		app.Get("/health", handler.Health)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status HealthStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "healthy", status.Checks["postgres"])
		assert.Len(t, status.Checks, 2)
	})

	t.Run("redis down", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(map[string]Check{"postgres": okCheck, "redis": downCheck}, "1.0.0")
		app.Get("/health", handler.Health)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var status HealthStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "unhealthy", status.Status)
		assert.Equal(t, "unhealthy: connection refused", status.Checks["redis"])
	})
}

func TestHealthHandler_Liveness(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(map[string]Check{"postgres": downCheck}, "1.0.0")
	app.Get("/livez", handler.Liveness)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "alive", result["status"])
}

func TestHealthHandler_Readiness(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(map[string]Check{"postgres": okCheck, "redis": downCheck}, "1.0.0")
	app.Get("/readyz", handler.Readiness)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "redis unavailable", result["reason"])
}

func TestHealthHandler_Version(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(nil, "2.1.0")

	// Wait a bit to have measurable uptime
	time.Sleep(10 * time.Millisecond)

	app.Get("/version", handler.Version)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "2.1.0", result["version"])
	assert.NotEmpty(t, result["uptime"])
}
