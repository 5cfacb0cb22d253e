package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrBookingNotFound, ErrOfferNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second open offer for the same booking
	// and provider).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateConflict is returned when a conditional update matches no row,
	// meaning the entity changed underneath the caller (e.g., an offer was
	// resolved by a concurrent accept, or capacity was exhausted).
	ErrUpdateConflict = errors.New("conditional update conflict")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrBookingNotFound indicates that the requested booking does not exist.
	ErrBookingNotFound = fmt.Errorf("%w: booking", ErrNotFound)

	// ErrOfferNotFound indicates that the requested inbox offer does not exist.
	ErrOfferNotFound = fmt.Errorf("%w: offer", ErrNotFound)

	// ErrProviderNotFound indicates that the requested provider does not exist.
	ErrProviderNotFound = fmt.Errorf("%w: provider", ErrNotFound)

	// ErrPaymentNotFound indicates that the requested payment record does not exist.
	ErrPaymentNotFound = fmt.Errorf("%w: payment", ErrNotFound)

	// ErrPingNotFound indicates that no location ping exists for the booking.
	ErrPingNotFound = fmt.Errorf("%w: location ping", ErrNotFound)

	// ErrContactNotFound indicates that the requested emergency contact does not exist.
	ErrContactNotFound = fmt.Errorf("%w: emergency contact", ErrNotFound)

	// ErrShareTokenNotFound indicates that the requested share token does not exist.
	ErrShareTokenNotFound = fmt.Errorf("%w: share token", ErrNotFound)

	// ErrPetNotFound indicates that the requested pet does not exist.
	ErrPetNotFound = fmt.Errorf("%w: pet", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "booking", "offer")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
