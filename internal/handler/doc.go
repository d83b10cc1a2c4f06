// Package handler contains the HTTP handlers of the EventDesk API.
//
// Handlers parse and validate requests, read the caller from the auth
// middleware locals, call a service and write the JSON response. Errors
// go through handleServiceError so every endpoint answers with the same
// {"error", "message", "details"} shape.
//
// # Routes
//
//   - /api/auth/* - registration, login and token refresh (no session)
//   - /api/organization/* - settings, members, invitations, API keys, audit logs
//   - /api/events/:eventId/* - per-event verticals, loaded by EventsHandler.LoadEvent
//   - /api/payments/webhook/:provider - payment provider callbacks (signed)
package handler
