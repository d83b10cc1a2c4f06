package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/payments"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	"github.com/eventdesk/eventdesk/api/internal/service"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// Services holds all service instances
type Services struct {
	Tasks         *tasks.Client
	Audit         *service.AuditService
	Auth          *service.AuthService
	APIKey        *service.APIKeyService
	Org           *service.OrgService
	Event         *service.EventService
	Ticket        *service.TicketService
	Attendee      *service.AttendeeService
	Registration  *service.RegistrationService
	Payment       *service.PaymentService
	Realtime      *service.RealtimeService
	Schedule      *service.ScheduleService
	Speaker       *service.SpeakerService
	Track         *service.TrackService
	Session       *service.SessionService
	Hotel         *service.HotelService
	Accommodation *service.AccommodationService
	Reviewer      *service.ReviewerService
	Export        *service.ExportService
}

// InitServices initializes all services
func InitServices(cfg *config.Config, logger *zap.Logger, dbs *Databases, repos *Repositories) (*Services, error) {
	svcs := &Services{}
	tx := dbs.Postgres

	svcs.Tasks = tasks.NewClient(dbs.AsynqClient, cfg.Worker)

	// Expiry goes through RabbitMQ when it is configured, asynq otherwise
	var expiry service.ExpiryScheduler = svcs.Tasks
	if dbs.Broker != nil {
		expiry = dbs.Broker
	}

	provider, err := payments.NewProvider(cfg.Payment)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %w", err)
	}

	// Audit service (every other service logs through it)
	svcs.Audit = service.NewAuditService(repos.Audit)

	svcs.Auth = service.NewAuthService(cfg, repos.User, repos.Org, tx)
	svcs.APIKey = service.NewAPIKeyService(repos.APIKey)
	svcs.Org = service.NewOrgService(
		logger,
		repos.Org,
		repos.User,
		tx,
		svcs.Tasks,
		cfg.Registration.InvitationTTL,
	)

	svcs.Event = service.NewEventService(repos.Event, repos.Reviewer, repos.Report)
	svcs.Ticket = service.NewTicketService(logger, repos.Ticket, tx)
	svcs.Attendee = service.NewAttendeeService(repos.Attendee)

	// Realtime service relays registration changes over Redis pub/sub
	svcs.Realtime = service.NewRealtimeService(logger, dbs.Redis.Client)

	svcs.Hotel = service.NewHotelService(repos.Hotel, tx)
	svcs.Accommodation = service.NewAccommodationService(repos.Accommodation, repos.Hotel, repos.Registration, tx)

	svcs.Registration = service.NewRegistrationService(
		logger,
		repos.Registration,
		repos.Attendee,
		repos.Ticket,
		repos.Event,
		tx,
		svcs.Tasks,
		expiry,
		cfg.Registration.DefaultPaymentWindow,
	)
	svcs.Registration.SetPublisher(svcs.Realtime)
	svcs.Registration.SetBookingReleaser(svcs.Accommodation)
	svcs.Ticket.SetWaitlistFiller(svcs.Registration)

	svcs.Payment = service.NewPaymentService(logger, repos.Payment, svcs.Registration, provider, tx)

	// Program: the schedule cache is invalidated by every program change
	scheduleCache := database.NewHashCache(dbs.Redis.Client, "schedule", cfg.Schedule.CacheTTL)
	svcs.Schedule = service.NewScheduleService(logger, repos.Session, repos.Track, scheduleCache, cfg.Schedule)
	svcs.Speaker = service.NewSpeakerService(repos.Speaker, svcs.Schedule)
	svcs.Track = service.NewTrackService(repos.Track, svcs.Schedule)
	svcs.Session = service.NewSessionService(repos.Session, repos.Track, repos.Speaker, svcs.Schedule)

	svcs.Reviewer = service.NewReviewerService(repos.Reviewer, repos.Org, repos.Track)

	var store service.ObjectStore
	if dbs.Storage != nil {
		store = dbs.Storage
	}
	svcs.Export = service.NewExportService(logger, repos.Export, repos.Report, store, svcs.Tasks)

	svcs.Auth.SetAuditLogger(svcs.Audit)
	svcs.APIKey.SetAuditLogger(svcs.Audit)
	svcs.Org.SetAuditLogger(svcs.Audit)
	svcs.Event.SetAuditLogger(svcs.Audit)
	svcs.Registration.SetAuditLogger(svcs.Audit)
	svcs.Payment.SetAuditLogger(svcs.Audit)
	svcs.Export.SetAuditLogger(svcs.Audit)

	return svcs, nil
}
