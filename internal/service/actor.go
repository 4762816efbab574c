package service

import "github.com/google/uuid"

// Actor identifies the authenticated user performing an operation. Handlers
// build it from the JWT claims set by the auth middleware.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}
