// Package relay moves live location pings from the provider's device to
// whoever is watching the trip. The latest position per booking is held in
// memory for cheap reads; every accepted ping is also appended to the
// store so the trail survives a restart and is auditable.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// ReportLocationRequest carries one ping from the provider's device.
type ReportLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
}

// RelayService accepts and serves live location updates for in-progress
// bookings.
type RelayService interface {
	// ReportLocation records a ping from the assigned provider. Pings are
	// accepted only while the booking is in progress; the relay channel
	// does not exist before the handshake and closes at completion or
	// cancellation. A ping against a booking that is not in progress is
	// dropped and logged, not an error: the provider's background
	// reporting loop keeps running through a completion it has not heard
	// about yet. Out-of-order pings are kept in the audit log but never
	// regress the live position.
	//
	// Returns:
	//   - (*domain.LocationPing, nil): The recorded ping
	//   - (nil, nil): The ping was dropped because the channel is closed
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the assigned
	//     provider
	ReportLocation(ctx context.Context, providerID, bookingID uuid.UUID, req ReportLocationRequest) (*domain.LocationPing, error)

	// GetCurrent retrieves the live position of a booking for one of its
	// parties. Reads never block behind writers; a slightly stale position
	// beats a delayed response.
	//
	// Returns:
	//   - (*domain.LocationPing, nil): The most recent position
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is neither party
	//   - (nil, ErrNoLocation): If no ping has arrived yet
	GetCurrent(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.LocationPing, error)

	// CurrentForBooking retrieves the live position without an actor
	// check. The safety trip-share read path performs its own token
	// validation before calling this.
	CurrentForBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LocationPing, error)

	// CloseChannel drops the in-memory live position for a booking. Called
	// when the booking reaches a terminal state.
	CloseChannel(bookingID uuid.UUID)
}

// Common error types for RelayService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNoLocation indicates no ping has been received for the booking.
	ErrNoLocation = errors.New("no location reported yet")
)

// ServiceError wraps errors from the relay service with additional context
// so consumers can differentiate failures using errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "report_location")
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
