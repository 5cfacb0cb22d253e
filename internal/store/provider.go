package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// ProviderStore defines the interface for provider and capacity persistence.
//
// Capacity is tracked per provider per service window (day). Reserve and
// Release are conditional updates so the 0 <= used <= max invariant holds
// under concurrent accepts without application-level locking of the
// capacity row.
type ProviderStore interface {
	// GetByID retrieves a provider by its unique ID.
	// Returns ErrProviderNotFound if the provider does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)

	// ListEligible retrieves active providers of the given service type
	// that still have capacity for the given service window.
	ListEligible(ctx context.Context, serviceType domain.ServiceType, day string) ([]*domain.Provider, error)

	// GetCapacity retrieves the provider's capacity row for the given
	// service window. Returns ErrProviderNotFound if none exists.
	GetCapacity(ctx context.Context, providerID uuid.UUID, day string) (*domain.ProviderCapacity, error)

	// ReserveCapacity atomically increments capacity_used for the window,
	// but only while capacity_used < capacity_max. Returns
	// ErrUpdateConflict when the provider is already at capacity.
	ReserveCapacity(ctx context.Context, providerID uuid.UUID, day string) error

	// ReleaseCapacity atomically decrements capacity_used for the window,
	// but only while capacity_used > 0. Returns ErrUpdateConflict when
	// there is nothing to release.
	ReleaseCapacity(ctx context.Context, providerID uuid.UUID, day string) error
}
