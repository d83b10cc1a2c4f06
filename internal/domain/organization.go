package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant that owns events, members and API keys
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Role of the requesting user, set when listing memberships
	Role OrgRole `json:"role,omitempty"`
}

// OrganizationInput represents input for creating an organization
type OrganizationInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// OrganizationUpdateInput represents input for updating an organization
type OrganizationUpdateInput struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
}

// OrganizationMember represents a member of an organization
type OrganizationMember struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
	Role           OrgRole   `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty"`
}

// MemberRoleInput represents input for changing a member's role
type MemberRoleInput struct {
	Role OrgRole `json:"role" validate:"required,role"`
}

// OrganizationInvitation represents an invitation to join an organization
type OrganizationInvitation struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	Email          string     `json:"email"`
	Role           OrgRole    `json:"role"`
	InvitedBy      uuid.UUID  `json:"invitedBy"`
	Token          string     `json:"-"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// IsExpired reports whether the invitation can no longer be accepted
func (i *OrganizationInvitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// OrganizationInvitationInput represents input for creating an invitation
type OrganizationInvitationInput struct {
	Email string  `json:"email" validate:"required,email"`
	Role  OrgRole `json:"role" validate:"required,role"`
}

// GenerateSlug generates a URL-safe slug from a name
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			s := b.String()
			if len(s) > 0 && s[len(s)-1] != '-' {
				b.WriteByte('-')
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
