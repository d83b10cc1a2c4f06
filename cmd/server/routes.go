package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	h := deps.Handlers // Shorthand for handlers
	auth := deps.AuthMiddleware
	rateLimit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Config.RateLimit.Enabled {
		rateLimit = deps.RateLimitMiddleware.Handler()
	}

	// Health check routes (no auth required)
	app.Get("/health", h.Health.Health)
	app.Get("/healthz", h.Health.Health)
	app.Get("/livez", h.Health.Liveness)
	app.Get("/readyz", h.Health.Readiness)
	app.Get("/version", h.Health.Version)

	api := app.Group("/api")

	// Auth routes (no session required)
	authRoutes := api.Group("/auth", rateLimit)
	{
		authRoutes.Post("/register", h.Auth.Register)
		authRoutes.Post("/login", h.Auth.Login)
		authRoutes.Post("/refresh", h.Auth.Refresh)
		authRoutes.Post("/logout", h.Auth.Logout)
	}

	// Payment provider callbacks are verified by signature
	api.Post("/payments/webhook/:provider", h.Payments.Webhook)

	// Everything below needs a user session, a bearer token or an API key
	authed := api.Group("", auth.Authenticate(), rateLimit, deps.CSRFMiddleware.Handler())

	// Routes that act for a person, not for an organization
	requireUser := auth.RequireUser()
	authed.Get("/csrf-token", requireUser, deps.CSRFMiddleware.GetToken())
	authed.Get("/auth/me", requireUser, h.Auth.Me)
	authed.Get("/organizations", requireUser, h.Organizations.List)
	authed.Post("/organizations", requireUser, h.Organizations.Create)
	authed.Post("/invitations/:token/accept", requireUser, h.Organizations.AcceptInvitation)

	// Organization settings, members, invitations, API keys and audit logs
	org := authed.Group("/organization", requireUser, auth.RequireOrganization())
	{
		org.Get("", auth.Require(domain.OrgRoleReviewer, ""), h.Organizations.GetCurrent)

		admin := org.Group("", auth.Require(domain.OrgRoleAdmin, ""))
		admin.Put("", h.Organizations.UpdateCurrent)

		admin.Get("/members", h.Organizations.ListMembers)
		admin.Put("/members/:userId", h.Organizations.UpdateMember)
		admin.Delete("/members/:userId", h.Organizations.RemoveMember)

		admin.Get("/invitations", h.Organizations.ListInvitations)
		admin.Post("/invitations", h.Organizations.CreateInvitation)
		admin.Delete("/invitations/:id", h.Organizations.RevokeInvitation)

		admin.Get("/api-keys", h.APIKeys.List)
		admin.Post("/api-keys", h.APIKeys.Create)
		admin.Delete("/api-keys/:id", h.APIKeys.Delete)

		admin.Get("/audit-logs", h.Audit.List)
	}

	// Events (API keys act for their organization)
	scoped := authed.Group("", auth.RequireOrganization())
	readEvents := auth.Require(domain.OrgRoleReviewer, domain.ScopeEventsRead)
	writeEvents := auth.Require(domain.OrgRoleOrganizer, domain.ScopeEventsWrite)

	scoped.Get("/events", readEvents, h.Events.List)
	scoped.Post("/events", writeEvents, h.Events.Create)

	event := scoped.Group("/events/:eventId", h.Events.LoadEvent)
	{
		event.Get("", readEvents, h.Events.Get)
		event.Put("", writeEvents, h.Events.Update)
		event.Delete("", auth.Require(domain.OrgRoleAdmin, ""), h.Events.Delete)
		event.Get("/stats", readEvents, h.Events.Stats)

		// Ticket types
		event.Get("/tickets", readEvents, h.Tickets.List)
		event.Post("/tickets", writeEvents, h.Tickets.Create)
		event.Get("/tickets/:ticketId", readEvents, h.Tickets.Get)
		event.Put("/tickets/:ticketId", writeEvents, h.Tickets.Update)
		event.Delete("/tickets/:ticketId", writeEvents, h.Tickets.Delete)

		// Attendees
		readAttendees := auth.Require(domain.OrgRoleReviewer, domain.ScopeAttendeesRead)
		writeAttendees := auth.Require(domain.OrgRoleOrganizer, domain.ScopeRegistrationsWrite)
		event.Get("/attendees", readAttendees, h.Attendees.List)
		event.Post("/attendees", writeAttendees, h.Attendees.Create)
		event.Get("/attendees/:attendeeId", readAttendees, h.Attendees.Get)
		event.Put("/attendees/:attendeeId", writeAttendees, h.Attendees.Update)
		event.Delete("/attendees/:attendeeId", writeAttendees, h.Attendees.Delete)

		// Registrations; export.csv is registered before :id
		readRegs := auth.Require(domain.OrgRoleReviewer, domain.ScopeRegistrationsRead)
		writeRegs := auth.Require(domain.OrgRoleOrganizer, domain.ScopeRegistrationsWrite)
		exportRegs := auth.Require(domain.OrgRoleOrganizer, domain.ScopeExportsRead)
		event.Get("/registrations/export.csv", exportRegs, h.Exports.DownloadCSV)
		event.Get("/registrations", readRegs, h.Registrations.List)
		event.Post("/registrations", writeRegs, h.Registrations.Create)
		event.Get("/registrations/:id", readRegs, h.Registrations.Get)
		event.Put("/registrations/:id", writeRegs, h.Registrations.Update)
		event.Delete("/registrations/:id", writeRegs, h.Registrations.Delete)
		event.Post("/registrations/:id/check-in", writeRegs, h.Registrations.CheckIn)

		// Payments
		event.Get("/registrations/:id/payments", readRegs, h.Payments.List)
		event.Post("/registrations/:id/payments", writeRegs, h.Payments.Start)
		event.Put("/registrations/:id/payments/:paymentId", writeRegs, h.Payments.Update)
		event.Post("/registrations/:id/payments/:paymentId/refund", writeRegs, h.Payments.Refund)

		// Exports to object storage
		event.Post("/exports", exportRegs, h.Exports.Create)
		event.Get("/exports/:exportId", exportRegs, h.Exports.Get)

		// Live registration feed (SSE)
		event.Get("/live", readRegs, h.Live.Stream)
		event.Get("/live/subscribers", readRegs, h.Live.Subscribers)

		// Speakers
		event.Get("/speakers", readEvents, h.Program.ListSpeakers)
		event.Post("/speakers", writeEvents, h.Program.CreateSpeaker)
		event.Get("/speakers/:speakerId", readEvents, h.Program.GetSpeaker)
		event.Put("/speakers/:speakerId", writeEvents, h.Program.UpdateSpeaker)
		event.Delete("/speakers/:speakerId", writeEvents, h.Program.DeleteSpeaker)

		// Tracks
		event.Get("/tracks", readEvents, h.Program.ListTracks)
		event.Post("/tracks", writeEvents, h.Program.CreateTrack)
		event.Put("/tracks/:trackId", writeEvents, h.Program.UpdateTrack)
		event.Delete("/tracks/:trackId", writeEvents, h.Program.DeleteTrack)

		// Sessions and the rendered schedule
		event.Get("/sessions", readEvents, h.Program.ListSessions)
		event.Post("/sessions", writeEvents, h.Program.CreateSession)
		event.Get("/sessions/:sessionId", readEvents, h.Program.GetSession)
		event.Put("/sessions/:sessionId", writeEvents, h.Program.UpdateSession)
		event.Delete("/sessions/:sessionId", writeEvents, h.Program.DeleteSession)
		event.Get("/schedule", readEvents, h.Program.Schedule)

		// Hotels and room types
		event.Get("/hotels", readEvents, h.Accommodations.ListHotels)
		event.Post("/hotels", writeEvents, h.Accommodations.CreateHotel)
		event.Get("/hotels/:hotelId", readEvents, h.Accommodations.GetHotel)
		event.Put("/hotels/:hotelId", writeEvents, h.Accommodations.UpdateHotel)
		event.Delete("/hotels/:hotelId", writeEvents, h.Accommodations.DeleteHotel)
		event.Get("/hotels/:hotelId/rooms", readEvents, h.Accommodations.ListRooms)
		event.Post("/hotels/:hotelId/rooms", writeEvents, h.Accommodations.CreateRoom)
		event.Put("/hotels/:hotelId/rooms/:roomTypeId", writeEvents, h.Accommodations.UpdateRoom)
		event.Delete("/hotels/:hotelId/rooms/:roomTypeId", writeEvents, h.Accommodations.DeleteRoom)

		// Accommodations
		event.Get("/accommodations", readRegs, h.Accommodations.List)
		event.Post("/accommodations", writeRegs, h.Accommodations.Create)
		event.Get("/accommodations/:id", readRegs, h.Accommodations.Get)
		event.Put("/accommodations/:id", writeRegs, h.Accommodations.Update)
		event.Delete("/accommodations/:id", writeRegs, h.Accommodations.Delete)

		// Reviewer assignments
		event.Get("/reviewers", auth.Require(domain.OrgRoleOrganizer, ""), h.Reviewers.List)
		event.Post("/reviewers", auth.Require(domain.OrgRoleOrganizer, ""), h.Reviewers.Assign)
		event.Delete("/reviewers/:reviewerId", auth.Require(domain.OrgRoleOrganizer, ""), h.Reviewers.Remove)
	}
}
