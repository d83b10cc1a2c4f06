package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/eventdesk/api/internal/config"
)

const (
	// CSRFTokenLength is the length of the CSRF token in bytes
	CSRFTokenLength = 32

	// CSRFCookieName is the name of the CSRF cookie
	CSRFCookieName = "eventdesk_csrf"

	// CSRFHeaderName is the name of the CSRF header
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFContextKey is the context key for the CSRF token
	CSRFContextKey = "csrfToken"
)

// CSRFConfig holds the configuration for CSRF middleware
type CSRFConfig struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool
	TokenExpiry  time.Duration
	Enabled      bool
}

// CSRFConfigFromSession derives the CSRF cookie settings from the session cookie settings
func CSRFConfigFromSession(cfg config.SessionConfig) CSRFConfig {
	return CSRFConfig{
		CookieName:   CSRFCookieName,
		CookieDomain: cfg.Domain,
		CookieSecure: cfg.Secure,
		TokenExpiry:  24 * time.Hour,
		Enabled:      true,
	}
}

// CSRFMiddleware implements the double-submit cookie check for
// requests authenticated with the session cookie. Bearer tokens and
// API keys are not sent by browsers on their own and skip the check.
type CSRFMiddleware struct {
	config CSRFConfig
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(config CSRFConfig) *CSRFMiddleware {
	if config.CookieName == "" {
		config.CookieName = CSRFCookieName
	}
	return &CSRFMiddleware{config: config}
}

// Handler must run after Authenticate
func (m *CSRFMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.config.Enabled {
			return c.Next()
		}

		if authType, _ := GetAuthType(c); authType != AuthTypeCookie {
			return c.Next()
		}

		if isSafeMethod(c.Method()) {
			c.Locals(CSRFContextKey, m.getOrCreateToken(c))
			return c.Next()
		}

		cookieToken := c.Cookies(m.config.CookieName)
		requestToken := c.Get(CSRFHeaderName)
		if cookieToken == "" || requestToken == "" ||
			subtle.ConstantTimeCompare([]byte(cookieToken), []byte(requestToken)) != 1 {
			return deny(c, fiber.StatusForbidden, "Invalid or missing CSRF token")
		}

		c.Locals(CSRFContextKey, cookieToken)
		return c.Next()
	}
}

// GetToken returns the CSRF token to single-page clients, issuing one if needed
func (m *CSRFMiddleware) GetToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"csrfToken": m.getOrCreateToken(c),
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace:
		return true
	}
	return false
}

func (m *CSRFMiddleware) getOrCreateToken(c *fiber.Ctx) string {
	if token := c.Cookies(m.config.CookieName); token != "" {
		return token
	}

	token := generateCSRFToken()
	cookie := &fiber.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.config.CookieDomain,
		Secure:   m.config.CookieSecure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if m.config.TokenExpiry > 0 {
		cookie.Expires = time.Now().Add(m.config.TokenExpiry)
	}
	c.Cookie(cookie)
	return token
}

func generateCSRFToken() string {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().String()))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// GetCSRFToken gets the CSRF token from context
func GetCSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}
