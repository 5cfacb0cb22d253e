// Package dispatch fans a pending booking out to eligible providers as
// time-boxed inbox offers and resolves provider responses. Acceptance is
// first-accept-wins: exactly one provider ends up assigned no matter how
// many respond concurrently.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// InboxEntry is one open offer as presented to a provider, with the live
// countdown the client renders.
type InboxEntry struct {
	Offer            *domain.InboxOffer `json:"offer"`
	Booking          *domain.Booking    `json:"booking"`
	ExpiresInSeconds int                `json:"expires_in_seconds"`
}

// OfferResolution is the outcome of a provider's response: the resolved
// offer plus the booking as it stands afterwards, so the client renders
// the new state without a second round trip.
type OfferResolution struct {
	Offer   *domain.InboxOffer `json:"offer"`
	Booking *domain.Booking    `json:"booking"`
}

// DispatchService creates inbox offers for pending bookings and processes
// provider responses.
type DispatchService interface {
	// DispatchBooking offers a pending booking to eligible providers:
	// active, matching service type, with capacity left in the booking's
	// service window. At most the configured number of offers go out per
	// round; providers that already hold an open offer for the booking are
	// skipped.
	//
	// Returns:
	//   - ([]*domain.InboxOffer, nil): The offers created this round
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the owner
	//   - (nil, ErrBookingNotPending): If the booking already left pending
	//   - (nil, ErrNoEligibleProviders): If nobody can take the booking
	DispatchBooking(ctx context.Context, ownerID, bookingID uuid.UUID) ([]*domain.InboxOffer, error)

	// ListInbox retrieves the provider's open offers, oldest first, each
	// with its remaining TTL. Offers whose TTL elapsed are marked expired
	// on the way out and never returned, regardless of whether the
	// background sweep has caught them yet.
	ListInbox(ctx context.Context, providerID uuid.UUID) ([]*InboxEntry, error)

	// RespondToOffer resolves an open offer as accepted or rejected.
	// Acceptance assigns the provider to the booking, reserves one unit of
	// the provider's capacity for the service window and confirms the
	// booking; every other open offer for the booking is closed. A
	// rejection only closes the offer.
	//
	// Returns:
	//   - (*OfferResolution, nil): The resolved offer and the resulting
	//     booking snapshot
	//   - (nil, ErrOfferNotFound): If the offer does not exist
	//   - (nil, domain.ErrUnauthorized): If the offer belongs to another
	//     provider
	//   - (nil, ErrOfferExpired): If the offer's TTL elapsed
	//   - (nil, ErrNoCapacity): If the provider's window filled up since
	//     the offer went out
	//   - (nil, domain.ErrConflict): If the booking was already taken or
	//     the offer was already resolved
	RespondToOffer(ctx context.Context, providerID, offerID uuid.UUID, accept bool) (*OfferResolution, error)
}

// Common error types for DispatchService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingNotPending indicates the booking already left the pending
	// state and cannot be dispatched.
	ErrBookingNotPending = errors.New("booking is not pending")

	// ErrNoEligibleProviders indicates no provider can currently take the
	// booking. The booking stays pending; a later round may succeed.
	ErrNoEligibleProviders = errors.New("no eligible providers available")

	// ErrOfferNotFound indicates that the offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrOfferExpired indicates the offer's TTL elapsed before the
	// provider responded. It belongs to the precondition-failed family so
	// callers classifying by domain.ErrPreconditionFailed catch it too.
	ErrOfferExpired = fmt.Errorf("%w: offer has expired", domain.ErrPreconditionFailed)

	// ErrNoCapacity indicates the provider's service window is full.
	ErrNoCapacity = errors.New("provider has no capacity left")
)

// ServiceError wraps errors from the dispatch service with additional
// context so consumers can differentiate failures using errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "dispatch_booking")
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
