// Package ledger owns the booking lifecycle: creation, cancellation,
// completion and reads. It is the single writer of terminal booking states;
// confirmation belongs to dispatch and the in-progress transition to the
// trust handshake.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// CreateBookingRequest carries the owner-supplied fields of a new booking.
type CreateBookingRequest struct {
	PetID       uuid.UUID          `json:"pet_id"`
	ServiceType domain.ServiceType `json:"service_type"`
	ScheduledAt time.Time          `json:"scheduled_at"`
	Price       int64              `json:"price"`
}

// LedgerService provides the booking lifecycle operations.
type LedgerService interface {
	// CreateBooking records a new pending booking for the owner. The pet
	// must belong to the owner and the schedule must be in the future.
	//
	// Returns:
	//   - (*domain.Booking, nil): The created booking in pending status
	//   - (nil, domain.ErrPetNotOwned): If the pet belongs to someone else
	//   - (nil, domain.ErrInvalidSchedule): If the schedule is in the past
	//   - (nil, error): Validation or store failures
	CreateBooking(ctx context.Context, ownerID uuid.UUID, req CreateBookingRequest) (*domain.Booking, error)

	// GetBooking retrieves a booking visible to the acting user. Owners see
	// their own bookings; providers see bookings assigned to them.
	//
	// Returns ErrBookingNotFound if it does not exist and
	// domain.ErrUnauthorized if the actor is neither party.
	GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)

	// ListBookings retrieves all bookings for the owner, newest first.
	ListBookings(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error)

	// CancelBooking cancels a pending or confirmed booking. Open offers for
	// the booking are closed and, when a provider was already assigned,
	// their capacity for the service window is released.
	//
	// Returns:
	//   - (*domain.Booking, nil): The cancelled booking
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the owner
	//   - (nil, domain.ErrInvalidTransition): If the booking is in progress
	//     or already terminal
	CancelBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.Booking, error)

	// CompleteBooking marks an in-progress booking completed and releases
	// the provider's capacity for the service window. Only the assigned
	// provider may complete.
	//
	// Returns:
	//   - (*domain.Booking, nil): The completed booking
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the assigned
	//     provider
	//   - (nil, domain.ErrInvalidTransition): If the booking is not in
	//     progress
	CompleteBooking(ctx context.Context, providerID, bookingID uuid.UUID) (*domain.Booking, error)
}

// Common error types for LedgerService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPetNotFound indicates that the pet on a create request does not exist.
	ErrPetNotFound = errors.New("pet not found")
)

// ServiceError wraps errors from the ledger service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_booking")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
