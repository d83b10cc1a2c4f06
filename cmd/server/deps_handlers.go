package main

import (
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/app"
	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/handler"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *handler.HealthHandler
	Auth           *handler.AuthHandler
	Organizations  *handler.OrganizationsHandler
	APIKeys        *handler.APIKeysHandler
	Audit          *handler.AuditHandler
	Events         *handler.EventsHandler
	Tickets        *handler.TicketsHandler
	Attendees      *handler.AttendeesHandler
	Registrations  *handler.RegistrationsHandler
	Payments       *handler.PaymentsHandler
	Exports        *handler.ExportsHandler
	Live           *handler.LiveHandler
	Program        *handler.ProgramHandler
	Accommodations *handler.AccommodationsHandler
	Reviewers      *handler.ReviewersHandler
}

// initHandlers initializes all handlers
func initHandlers(
	cfg *config.Config,
	logger *zap.Logger,
	dbs *app.Databases,
	svcs *app.Services,
	version string,
) *Handlers {
	return &Handlers{
		Health: handler.NewHealthHandler(
			map[string]handler.Check{
				"postgres": handler.PostgresCheck(dbs.Postgres.Pool),
				"redis":    handler.RedisCheck(dbs.Redis.Client),
			},
			version,
		),
		Auth: handler.NewAuthHandler(
			svcs.Auth,
			svcs.Org,
			cfg.Session,
			logger,
		),
		Organizations: handler.NewOrganizationsHandler(
			svcs.Org,
			svcs.Auth,
			logger,
		),
		APIKeys: handler.NewAPIKeysHandler(
			svcs.APIKey,
			logger,
		),
		Audit: handler.NewAuditHandler(svcs.Audit),
		Events: handler.NewEventsHandler(
			svcs.Event,
			logger,
		),
		Tickets:   handler.NewTicketsHandler(svcs.Ticket),
		Attendees: handler.NewAttendeesHandler(svcs.Attendee),
		Registrations: handler.NewRegistrationsHandler(
			svcs.Registration,
			logger,
		),
		Payments: handler.NewPaymentsHandler(
			svcs.Payment,
			logger,
		),
		Exports: handler.NewExportsHandler(
			svcs.Export,
			logger,
		),
		Live: handler.NewLiveHandler(
			svcs.Realtime,
			logger,
		),
		Program: handler.NewProgramHandler(
			svcs.Speaker,
			svcs.Track,
			svcs.Session,
			svcs.Schedule,
		),
		Accommodations: handler.NewAccommodationsHandler(
			svcs.Hotel,
			svcs.Accommodation,
		),
		Reviewers: handler.NewReviewersHandler(svcs.Reviewer),
	}
}
