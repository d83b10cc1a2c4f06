package dto

import "github.com/eventdesk/eventdesk/api/internal/domain"

// MeResponse is returned by GET /api/auth/me
type MeResponse struct {
	User          *domain.User          `json:"user"`
	Organizations []domain.Organization `json:"organizations"`
	// AuthType is "jwt", "cookie" or "api_key"
	AuthType string `json:"authType"`
}

// CSRFResponse hands the double-submit token to browser clients
type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}
