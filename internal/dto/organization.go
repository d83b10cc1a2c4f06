package dto

import "github.com/eventdesk/eventdesk/api/internal/domain"

// CurrentOrganizationResponse is the organization the caller acts in, with
// the caller's role in it
type CurrentOrganizationResponse struct {
	*domain.Organization
	Role domain.OrgRole `json:"role,omitempty"`
}

// AuditQuery filters the organization audit log
type AuditQuery struct {
	Action       string `query:"action" validate:"omitempty,max=64"`
	ResourceType string `query:"resourceType" validate:"omitempty,max=64"`
}
