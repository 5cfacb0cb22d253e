package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// LocationStore defines the interface for the append-only location ping log.
//
// The relay keeps its own in-memory latest-ping projection; the store backs
// it up so the latest position survives a restart and is queryable for audit.
type LocationStore interface {
	// Append saves a ping to the log.
	Append(ctx context.Context, ping *domain.LocationPing) error

	// LatestByBooking retrieves the most recent ping for a booking, by
	// received time. Returns ErrPingNotFound if the booking has no pings.
	LatestByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LocationPing, error)
}
