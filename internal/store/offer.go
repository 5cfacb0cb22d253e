package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// OfferStore defines the interface for inbox-offer persistence.
//
// Open offers are indexed by provider so inbox listing does not scan the
// whole offer table.
type OfferStore interface {
	// Create saves a new offer. Returns ErrDuplicate if an open offer
	// already exists for the same (booking, provider) pair.
	Create(ctx context.Context, offer *domain.InboxOffer) error

	// GetByID retrieves an offer by its unique ID.
	// Returns ErrOfferNotFound if the offer does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxOffer, error)

	// ListOpenByProvider retrieves all open offers for a provider, oldest
	// first. Callers still apply the lazy TTL check; an overdue offer may
	// appear here before the sweep has marked it.
	ListOpenByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.InboxOffer, error)

	// ListByBooking retrieves all offers for a booking.
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.InboxOffer, error)

	// UpdateStatus performs a conditional status change: the offer is
	// updated only if its current status equals from. Returns
	// ErrUpdateConflict if the offer was already resolved, and
	// ErrOfferNotFound if it does not exist. Accepting an offer relies on
	// this to guarantee first-accept-wins.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OfferStatus) error

	// ExpireOverdue marks every open offer whose TTL elapsed at or before
	// now as expired and returns how many were updated. Used by the
	// periodic sweep.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}
