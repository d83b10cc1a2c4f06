package domain

// EmailTemplate names an outgoing email
type EmailTemplate string

const (
	EmailInvitation             EmailTemplate = "invitation"
	EmailRegistrationConfirmed  EmailTemplate = "registration_confirmed"
	EmailRegistrationPending    EmailTemplate = "registration_pending"
	EmailRegistrationWaitlisted EmailTemplate = "registration_waitlisted"
	EmailRegistrationCancelled  EmailTemplate = "registration_cancelled"
	EmailRegistrationCheckedIn  EmailTemplate = "registration_checked_in"
)

// RegistrationEmailFor returns the email sent when a registration enters status
func RegistrationEmailFor(status RegistrationStatus) (EmailTemplate, bool) {
	switch status {
	case RegistrationStatusConfirmed:
		return EmailRegistrationConfirmed, true
	case RegistrationStatusPending:
		return EmailRegistrationPending, true
	case RegistrationStatusWaitlisted:
		return EmailRegistrationWaitlisted, true
	case RegistrationStatusCancelled:
		return EmailRegistrationCancelled, true
	case RegistrationStatusCheckedIn:
		return EmailRegistrationCheckedIn, true
	}
	return "", false
}
