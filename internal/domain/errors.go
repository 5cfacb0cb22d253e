// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTransition is returned when a booking status change would
	// regress the lifecycle or act on a terminal booking.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrPreconditionFailed is returned when an operation is requested on a
	// booking whose current state does not permit it (e.g. PIN generation
	// before payment). Callers receive the current state alongside it.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflict is returned when a concurrent operation on the same
	// booking already resolved the contested resource. It is distinct from
	// ErrPreconditionFailed so clients can render "already taken".
	ErrConflict = errors.New("conflicting concurrent operation")

	// ErrInvalidSchedule is returned when a booking is requested for a
	// date/time in the past.
	ErrInvalidSchedule = errors.New("scheduled time is in the past")

	// ErrPetNotOwned is returned when the pet on a booking request does not
	// belong to the requesting owner.
	ErrPetNotOwned = errors.New("pet does not belong to owner")

	// ErrUnauthorized is returned when an operation is not permitted for
	// the acting user.
	ErrUnauthorized = errors.New("unauthorized operation")
)
