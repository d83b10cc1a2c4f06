package domain

import (
	"time"

	"github.com/google/uuid"
)

// API key scopes
const (
	ScopeEventsRead         = "events:read"
	ScopeEventsWrite        = "events:write"
	ScopeRegistrationsRead  = "registrations:read"
	ScopeRegistrationsWrite = "registrations:write"
	ScopeAttendeesRead      = "attendees:read"
	ScopeExportsRead        = "exports:read"
	ScopeAll                = "*"
)

// APIKey is an organization-level key for external integrations
type APIKey struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	Name           string     `json:"name"`
	PublicID       string     `json:"publicId"`
	SecretHash     string     `json:"-"`
	SecretPreview  string     `json:"secretPreview"`
	Scopes         []string   `json:"scopes"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt     *time.Time `json:"lastUsedAt,omitempty"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// APIKeyInput represents input for creating an API key
type APIKeyInput struct {
	Name      string     `json:"name" validate:"required,min=1,max=100"`
	Scopes    []string   `json:"scopes,omitempty" validate:"omitempty,dive,apiscope"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// APIKeyCreateResult carries the full key, shown exactly once
type APIKeyCreateResult struct {
	APIKey *APIKey `json:"apiKey"`
	Key    string  `json:"key"`
}

// AllScopes returns every scope an API key can be granted
func AllScopes() []string {
	return []string{
		ScopeEventsRead,
		ScopeEventsWrite,
		ScopeRegistrationsRead,
		ScopeRegistrationsWrite,
		ScopeAttendeesRead,
		ScopeExportsRead,
		ScopeAll,
	}
}

// DefaultScopes returns the scopes given to keys created without any
func DefaultScopes() []string {
	return []string{ScopeEventsRead, ScopeRegistrationsRead, ScopeAttendeesRead}
}

// IsValidScope checks scope against AllScopes
func IsValidScope(scope string) bool {
	for _, s := range AllScopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// HasScope checks if the key grants scope
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == ScopeAll || s == scope {
			return true
		}
	}
	return false
}

// IsExpired reports whether the key has expired
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}
