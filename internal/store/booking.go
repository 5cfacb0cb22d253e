package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// BookingStore defines the interface for booking persistence.
type BookingStore interface {
	// Create saves a new booking. The booking must be valid according to
	// domain validation rules; returns ErrInvalidEntity wrapping the
	// validation error otherwise.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its unique ID.
	// Returns ErrBookingNotFound if the booking does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// Update persists all mutable booking fields at once. It is a full-row
	// write with no concurrency guard; live state changes go through the
	// conditional methods below so a stale snapshot can never overwrite a
	// status that moved underneath the caller.
	// Returns ErrBookingNotFound if the booking does not exist.
	Update(ctx context.Context, booking *domain.Booking) error

	// UpdateStatus performs a conditional status change: the row is updated
	// only if its current status equals from. Returns ErrUpdateConflict if
	// the booking's status changed underneath the caller, and
	// ErrBookingNotFound if the booking does not exist. This is the
	// compare-and-swap primitive the lifecycle state machine is built on.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error

	// UpdatePayment performs a conditional payment-status change: the row
	// is updated only while the booking status equals status and the
	// payment status equals from. Never touches the booking status itself.
	// Returns ErrUpdateConflict if either guard fails and
	// ErrBookingNotFound if the booking does not exist.
	UpdatePayment(ctx context.Context, id uuid.UUID, status domain.BookingStatus, from, to domain.PaymentStatus) error

	// SetPINState writes the verification PIN and attempt counter, guarded
	// by the current booking status. Returns ErrUpdateConflict if the
	// status moved underneath the caller and ErrBookingNotFound if the
	// booking does not exist.
	SetPINState(ctx context.Context, id uuid.UUID, status domain.BookingStatus, pin string, attempts int) error

	// AssignProvider records the assigned provider, guarded by the current
	// booking status. Returns ErrUpdateConflict if the status moved
	// underneath the caller and ErrBookingNotFound if the booking does not
	// exist.
	AssignProvider(ctx context.Context, id, providerID uuid.UUID, status domain.BookingStatus) error

	// SetCompletedAt records the completion timestamp. The status swap to
	// completed has already been decided by UpdateStatus; this only fills
	// in the time.
	SetCompletedAt(ctx context.Context, id uuid.UUID, completedAt time.Time) error

	// ListByOwner retrieves all bookings for the given owner, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error)
}
