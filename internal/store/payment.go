package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// PaymentStore defines the interface for payment-record persistence.
//
// Records are append-mostly: a rejected manual proof is never mutated back to
// pending; re-submission creates a new record so the audit trail survives.
type PaymentStore interface {
	// Create saves a new payment record.
	Create(ctx context.Context, record *domain.PaymentRecord) error

	// GetByID retrieves a payment record by its unique ID.
	// Returns ErrPaymentNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error)

	// ListByBooking retrieves all payment records for a booking, newest first.
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.PaymentRecord, error)

	// UpdateReviewStatus performs a conditional review-status change: the
	// record is updated only if its current review status equals from.
	// Returns ErrUpdateConflict if the record was already reviewed, and
	// ErrPaymentNotFound if it does not exist.
	UpdateReviewStatus(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus) error
}
