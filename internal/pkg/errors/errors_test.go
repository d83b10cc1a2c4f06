package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"not found", NotFound("event"), http.StatusNotFound, CodeNotFound},
		{"validation", Validation("bad"), http.StatusBadRequest, CodeValidation},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", Forbidden(""), http.StatusForbidden, CodeForbidden},
		{"conflict", Conflict("taken"), http.StatusConflict, CodeConflict},
		{"unprocessable", Unprocessable("nope"), http.StatusUnprocessableEntity, CodeUnprocessable},
		{"rate limited", RateLimited(), http.StatusTooManyRequests, CodeRateLimited},
		{"internal", Internal("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "ticket type not found", NotFound("ticket type").Message)
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading registration: %w", NotFound("registration"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.True(t, IsConflict(Conflict("dup")))
	assert.True(t, IsUnprocessable(Unprocessable("x")))
	assert.True(t, IsBadRequest(BadRequest("x")))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("plain")))
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields(map[string]string{"email": "is required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "is required", err.Details["email"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))

	conflict := Conflict("dup")
	assert.Same(t, conflict, Wrap(conflict, "x"))

	wrapped := Wrap(fmt.Errorf("db down"), "failed to load event")
	appErr := GetAppError(wrapped)
	if assert.NotNil(t, appErr) {
		assert.Equal(t, CodeInternal, appErr.Code)
		assert.Contains(t, appErr.Error(), "db down")
	}
}
