package domain

// OrgRole represents the role of a user in an organization
type OrgRole string

const (
	OrgRoleSubmitter  OrgRole = "SUBMITTER"
	OrgRoleReviewer   OrgRole = "REVIEWER"
	OrgRoleOrganizer  OrgRole = "ORGANIZER"
	OrgRoleAdmin      OrgRole = "ADMIN"
	OrgRoleSuperAdmin OrgRole = "SUPER_ADMIN"
)

var roleLevels = map[OrgRole]int{
	OrgRoleSubmitter:  1,
	OrgRoleReviewer:   2,
	OrgRoleOrganizer:  3,
	OrgRoleAdmin:      4,
	OrgRoleSuperAdmin: 5,
}

// IsValid checks if the role can be granted through an organization membership.
// SUPER_ADMIN is carried by the user flag only.
func (r OrgRole) IsValid() bool {
	switch r {
	case OrgRoleSubmitter, OrgRoleReviewer, OrgRoleOrganizer, OrgRoleAdmin:
		return true
	}
	return false
}

// Level returns the role's rank, 0 for unknown roles
func (r OrgRole) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether r ranks at or above min
func (r OrgRole) AtLeast(min OrgRole) bool {
	return r.Level() > 0 && r.Level() >= min.Level()
}

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusArchived  EventStatus = "ARCHIVED"
)

// IsValid checks if the event status is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusArchived:
		return true
	}
	return false
}

// RegistrationStatus represents the state of a registration
type RegistrationStatus string

const (
	RegistrationStatusPending    RegistrationStatus = "PENDING"
	RegistrationStatusConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
	RegistrationStatusWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationStatusCheckedIn  RegistrationStatus = "CHECKED_IN"
)

// IsValid checks if the registration status is valid
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusConfirmed, RegistrationStatusCancelled,
		RegistrationStatusWaitlisted, RegistrationStatusCheckedIn:
		return true
	}
	return false
}

// HoldsSeat reports whether a registration in this status counts against ticket quantity
func (s RegistrationStatus) HoldsSeat() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusConfirmed, RegistrationStatusCheckedIn:
		return true
	}
	return false
}

// PaymentStatus represents the payment state of a registration or a payment
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid,
		PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// AccommodationStatus represents the state of a hotel booking
type AccommodationStatus string

const (
	AccommodationStatusReserved  AccommodationStatus = "RESERVED"
	AccommodationStatusConfirmed AccommodationStatus = "CONFIRMED"
	AccommodationStatusCancelled AccommodationStatus = "CANCELLED"
)

// IsValid checks if the accommodation status is valid
func (s AccommodationStatus) IsValid() bool {
	switch s {
	case AccommodationStatusReserved, AccommodationStatusConfirmed, AccommodationStatusCancelled:
		return true
	}
	return false
}

// ExportStatus represents the state of an asynchronous export
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)
