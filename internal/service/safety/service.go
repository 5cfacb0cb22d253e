// Package safety covers the escalation surface of an active booking:
// owner-managed emergency contacts, read-only trip sharing via unguessable
// tokens, and the SOS fan-out.
package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// Notifier delivers a message to a phone number. The production
// implementation sits with the messaging collaborator; this service only
// needs the port.
type Notifier interface {
	// Notify sends the message to the target phone number.
	Notify(ctx context.Context, phone, message string) error
}

// NotificationResult is the per-target outcome of an SOS fan-out.
type NotificationResult struct {
	ContactID uuid.UUID `json:"contact_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
}

// SOSResult is everything the client needs after triggering an SOS: the
// recorded event, the fixed emergency number to dial, and how each contact
// notification fared.
type SOSResult struct {
	Event           *domain.SOSEvent     `json:"event"`
	EmergencyNumber string               `json:"emergency_number"`
	Notifications   []NotificationResult `json:"notifications"`
}

// TripShareView is the read-only projection served to a share-token holder.
// It deliberately exposes nothing beyond status and position.
type TripShareView struct {
	BookingID uuid.UUID            `json:"booking_id"`
	Status    domain.BookingStatus `json:"status"`
	Location  *domain.LocationPing `json:"location,omitempty"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// SafetyService manages emergency contacts, trip sharing and SOS.
type SafetyService interface {
	// AddContact saves a new emergency contact for the owner.
	AddContact(ctx context.Context, ownerID uuid.UUID, name, phone string) (*domain.EmergencyContact, error)

	// ListContacts retrieves the owner's emergency contacts.
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*domain.EmergencyContact, error)

	// RemoveContact deletes one of the owner's contacts.
	// Returns ErrContactNotFound if it does not exist and
	// domain.ErrUnauthorized if it belongs to another owner.
	RemoveContact(ctx context.Context, ownerID, contactID uuid.UUID) error

	// ShareTrip mints a time-limited read-only share token for an active
	// booking.
	//
	// Returns:
	//   - (*domain.SafetyShareToken, nil): The minted token
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the owner
	//   - (nil, domain.ErrPreconditionFailed): If the booking is not active
	ShareTrip(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.SafetyShareToken, error)

	// ResolveShareToken serves the read-only trip view for a token. No
	// authentication is required; the token itself is the credential.
	//
	// Returns:
	//   - (*TripShareView, nil): Status and last known position
	//   - (nil, ErrShareTokenNotFound): If the token does not exist
	//   - (nil, domain.ErrShareTokenExpired): If the token expired
	ResolveShareToken(ctx context.Context, token string) (*TripShareView, error)

	// TriggerSOS records an SOS during an active booking and fans the
	// alert out to every emergency contact in parallel. One slow or
	// failing delivery never blocks the others; the result reports each
	// outcome alongside the fixed emergency number.
	//
	// Returns:
	//   - (*SOSResult, nil): The recorded event and delivery outcomes
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the owner
	//   - (nil, domain.ErrPreconditionFailed): If the booking is not active
	TriggerSOS(ctx context.Context, ownerID, bookingID uuid.UUID, lat, lng float64) (*SOSResult, error)
}

// Common error types for SafetyService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrContactNotFound indicates that the contact does not exist.
	ErrContactNotFound = errors.New("emergency contact not found")

	// ErrShareTokenNotFound indicates that the share token does not exist.
	ErrShareTokenNotFound = errors.New("share token not found")
)

// ServiceError wraps errors from the safety service with additional context
// so consumers can differentiate failures using errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "trigger_sos")
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
