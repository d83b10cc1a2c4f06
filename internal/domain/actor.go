package domain

import "github.com/google/uuid"

// Actor identifies who performs a mutation. It is attached to audit logs.
type Actor struct {
	UserID    *uuid.UUID
	Email     string
	Type      string
	IPAddress string
	UserAgent string
	RequestID string
}

// SystemActor is used for mutations made by background jobs
func SystemActor() Actor {
	return Actor{Type: ActorTypeSystem, Email: "system"}
}
