package app

import (
	pgrepo "github.com/eventdesk/eventdesk/api/internal/repository/postgres"
	"github.com/eventdesk/eventdesk/api/internal/repository/report"
)

// Repositories holds all repository instances
type Repositories struct {
	// PostgreSQL repositories over pgx
	User          *pgrepo.UserRepository
	Org           *pgrepo.OrgRepository
	APIKey        *pgrepo.APIKeyRepository
	Event         *pgrepo.EventRepository
	Ticket        *pgrepo.TicketRepository
	Attendee      *pgrepo.AttendeeRepository
	Registration  *pgrepo.RegistrationRepository
	Payment       *pgrepo.PaymentRepository
	Speaker       *pgrepo.SpeakerRepository
	Track         *pgrepo.TrackRepository
	Session       *pgrepo.SessionRepository
	Hotel         *pgrepo.HotelRepository
	Accommodation *pgrepo.AccommodationRepository
	Reviewer      *pgrepo.ReviewerRepository
	Export        *pgrepo.ExportRepository

	// Audit log over sqlx
	Audit *pgrepo.AuditRepository

	// Reporting read model over bun
	Report *report.Repository
}

// InitRepositories initializes all repositories
func InitRepositories(dbs *Databases) *Repositories {
	return &Repositories{
		User:          pgrepo.NewUserRepository(dbs.Postgres),
		Org:           pgrepo.NewOrgRepository(dbs.Postgres),
		APIKey:        pgrepo.NewAPIKeyRepository(dbs.Postgres),
		Event:         pgrepo.NewEventRepository(dbs.Postgres),
		Ticket:        pgrepo.NewTicketRepository(dbs.Postgres),
		Attendee:      pgrepo.NewAttendeeRepository(dbs.Postgres),
		Registration:  pgrepo.NewRegistrationRepository(dbs.Postgres),
		Payment:       pgrepo.NewPaymentRepository(dbs.Postgres),
		Speaker:       pgrepo.NewSpeakerRepository(dbs.Postgres),
		Track:         pgrepo.NewTrackRepository(dbs.Postgres),
		Session:       pgrepo.NewSessionRepository(dbs.Postgres),
		Hotel:         pgrepo.NewHotelRepository(dbs.Postgres),
		Accommodation: pgrepo.NewAccommodationRepository(dbs.Postgres),
		Reviewer:      pgrepo.NewReviewerRepository(dbs.Postgres),
		Export:        pgrepo.NewExportRepository(dbs.Postgres),

		Audit: pgrepo.NewAuditRepository(dbs.Reporting.Sqlx),

		Report: report.NewRepository(dbs.Reporting.Bun),
	}
}
