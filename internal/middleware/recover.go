package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
)

const sentryHubKey = "sentryHub"

// InitSentry initializes the Sentry SDK. An empty DSN leaves reporting off.
func InitSentry(cfg config.SentryConfig, release string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return true, nil
}

// FlushSentry flushes any buffered events to Sentry
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Recover turns panics into 500 responses, logs them and reports them to
// Sentry when enabled
func Recover(logger *zap.Logger, sentryEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		var hub *sentry.Hub
		if sentryEnabled {
			hub = sentry.CurrentHub().Clone()
			setSentryRequestContext(hub, c)
			c.Locals(sentryHubKey, hub)
		}

		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}

			logger.Error("panic recovered",
				zap.Error(panicErr),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("stack", string(stack)),
				zap.String("request_id", GetRequestID(c)),
			)

			if hub != nil {
				hub.Scope().SetTag("request_id", GetRequestID(c))
				hub.Scope().SetExtra("stack_trace", string(stack))
				hub.Scope().SetLevel(sentry.LevelFatal)
				hub.RecoverWithContext(c.Context(), r)
				hub.Flush(2 * time.Second)
			}

			err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":     "Internal Server Error",
				"message":   "An unexpected error occurred",
				"requestId": GetRequestID(c),
			})
		}()

		return c.Next()
	}
}

// CaptureError reports an unexpected handler error to Sentry
func CaptureError(c *fiber.Ctx, err error) {
	hub, ok := c.Locals(sentryHubKey).(*sentry.Hub)
	if !ok || hub == nil {
		hub = sentry.CurrentHub().Clone()
		setSentryRequestContext(hub, c)
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", GetRequestID(c))
		if userID, ok := GetUserID(c); ok {
			scope.SetUser(sentry.User{ID: userID.String()})
		}
		if orgID, ok := GetOrgID(c); ok {
			scope.SetTag("org_id", orgID.String())
		}
		hub.CaptureException(err)
	})
}

// setSentryRequestContext attaches the request without credentials
func setSentryRequestContext(hub *sentry.Hub, c *fiber.Ctx) {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if k != fiber.HeaderAuthorization && k != fiber.HeaderCookie && k != "X-Api-Key" && k != CSRFHeaderName {
			headers[k] = string(value)
		}
	})

	hub.Scope().SetContext("Request", map[string]interface{}{
		"url":          c.OriginalURL(),
		"method":       c.Method(),
		"headers":      headers,
		"query_string": string(c.Request().URI().QueryString()),
		"remote_addr":  c.IP(),
	})
}
