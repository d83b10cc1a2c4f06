// Package errors provides the application error type shared by repositories,
// services and HTTP handlers.
//
// Every AppError carries a machine-readable code and the HTTP status it maps to:
//
//   - NotFound: the organization, event or child record does not exist (404)
//   - Validation / BadRequest: malformed input (400)
//   - Unauthorized: no valid session, token or API key (401)
//   - Forbidden: the caller's organization role is too low (403)
//   - Conflict: unique violations, sold counters, last admin (409)
//   - Unprocessable: disallowed status transitions, cross-event references (422)
//   - Internal: anything unexpected (500)
//
// Repositories return these directly:
//
//	if errors.Is(err, pgx.ErrNoRows) {
//	    return nil, apperrors.NotFound("event")
//	}
//
// Handlers translate them into {"error": ..., "message": ...} bodies.
package errors
