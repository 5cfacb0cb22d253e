// Package handshake implements the start-of-service trust handshake: the
// owner is issued a short numeric PIN once the booking is confirmed and
// paid, and the provider proves physical presence by presenting it. A
// successful verification is the only path from confirmed to in progress.
package handshake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// HandshakeService issues and verifies booking PINs.
type HandshakeService interface {
	// GeneratePIN issues the verification PIN for a confirmed, paid
	// booking. Repeated calls return the same PIN until it is verified or
	// invalidated by lockout; a new PIN is minted after either.
	//
	// Returns:
	//   - (pin, nil): The PIN to hand to the provider in person
	//   - ("", ErrBookingNotFound): If the booking does not exist
	//   - ("", domain.ErrUnauthorized): If the actor is not the owner
	//   - ("", domain.ErrPreconditionFailed): If the booking is not
	//     confirmed or not paid
	GeneratePIN(ctx context.Context, ownerID, bookingID uuid.UUID) (string, error)

	// VerifyPIN checks the PIN presented by the assigned provider. On
	// success the booking moves to in progress and the PIN is consumed.
	// Each failure counts toward the lockout threshold; once reached the
	// PIN is invalidated and the owner must issue a new one.
	//
	// Returns:
	//   - (nil): The handshake succeeded and service started
	//   - (ErrBookingNotFound): If the booking does not exist
	//   - (domain.ErrUnauthorized): If the actor is not the assigned
	//     provider
	//   - (ErrPINNotIssued): If no PIN is outstanding
	//   - (ErrPINMismatch): If the PIN is wrong and attempts remain
	//   - (ErrHandshakeLocked): If this failure reached the lockout
	//     threshold, or the handshake was already locked
	//   - (domain.ErrPreconditionFailed): If the booking is not confirmed
	VerifyPIN(ctx context.Context, providerID, bookingID uuid.UUID, pin string) error
}

// Common error types for HandshakeService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPINNotIssued indicates no PIN is outstanding for the booking.
	ErrPINNotIssued = errors.New("no verification PIN issued")

	// ErrPINMismatch indicates the presented PIN was wrong.
	ErrPINMismatch = errors.New("verification PIN does not match")

	// ErrHandshakeLocked indicates too many failed attempts; the current
	// PIN is invalid and a new one must be issued.
	ErrHandshakeLocked = errors.New("handshake locked after too many failed attempts")
)

// ServiceError wraps errors from the handshake service with additional
// context so consumers can differentiate failures using errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "verify_pin")
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
