package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Authentication actions
	AuditActionLogin       AuditAction = "login"
	AuditActionLogout      AuditAction = "logout"
	AuditActionLoginFailed AuditAction = "login_failed"

	// Organization management
	AuditActionOrgCreated        AuditAction = "org_created"
	AuditActionOrgUpdated        AuditAction = "org_updated"
	AuditActionMemberAdded       AuditAction = "member_added"
	AuditActionMemberRemoved     AuditAction = "member_removed"
	AuditActionMemberRoleChanged AuditAction = "member_role_changed"
	AuditActionUserInvited       AuditAction = "user_invited"
	AuditActionInviteRevoked     AuditAction = "invitation_revoked"

	// API keys
	AuditActionAPIKeyCreated AuditAction = "api_key_created"
	AuditActionAPIKeyRevoked AuditAction = "api_key_revoked"

	// Events and registrations
	AuditActionEventCreated              AuditAction = "event_created"
	AuditActionEventDeleted              AuditAction = "event_deleted"
	AuditActionRegistrationStatusChanged AuditAction = "registration_status_changed"
	AuditActionPaymentRefunded           AuditAction = "payment_refunded"
	AuditActionDataExported              AuditAction = "data_exported"
)

// AuditResourceType represents the type of resource being audited
type AuditResourceType string

const (
	AuditResourceUser         AuditResourceType = "user"
	AuditResourceOrganization AuditResourceType = "organization"
	AuditResourceMember       AuditResourceType = "member"
	AuditResourceInvitation   AuditResourceType = "invitation"
	AuditResourceAPIKey       AuditResourceType = "api_key"
	AuditResourceEvent        AuditResourceType = "event"
	AuditResourceRegistration AuditResourceType = "registration"
	AuditResourcePayment      AuditResourceType = "payment"
)

// Actor types
const (
	ActorTypeUser   = "user"
	ActorTypeAPIKey = "api_key"
	ActorTypeSystem = "system"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	OrganizationID uuid.UUID         `json:"organizationId" db:"organization_id"`
	ActorID        *uuid.UUID        `json:"actorId,omitempty" db:"actor_id"`
	ActorEmail     string            `json:"actorEmail" db:"actor_email"`
	ActorType      string            `json:"actorType" db:"actor_type"`
	Action         AuditAction       `json:"action" db:"action"`
	ResourceType   AuditResourceType `json:"resourceType" db:"resource_type"`
	ResourceID     *uuid.UUID        `json:"resourceId,omitempty" db:"resource_id"`
	ResourceName   string            `json:"resourceName,omitempty" db:"resource_name"`
	Description    string            `json:"description" db:"description"`
	Metadata       JSONMap           `json:"metadata,omitempty" db:"metadata"`
	IPAddress      string            `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent      string            `json:"userAgent,omitempty" db:"user_agent"`
	RequestID      string            `json:"requestId,omitempty" db:"request_id"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
}

// AuditLogFilter represents filter options for querying audit logs
type AuditLogFilter struct {
	OrganizationID uuid.UUID
	Action         *AuditAction
	ResourceType   *AuditResourceType
	ResourceID     *uuid.UUID
	Limit          int
	Offset         int
}

// AuditLogInput represents input for creating an audit log entry
type AuditLogInput struct {
	OrganizationID uuid.UUID
	ActorID        *uuid.UUID
	ActorEmail     string
	ActorType      string
	Action         AuditAction
	ResourceType   AuditResourceType
	ResourceID     *uuid.UUID
	ResourceName   string
	Description    string
	Metadata       map[string]any
	IPAddress      string
	UserAgent      string
	RequestID      string
}
