package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// LocationStore is an in-memory implementation of store.LocationStore.
// Pings are kept as an append-only log per booking.
type LocationStore struct {
	mu        sync.RWMutex
	byBooking map[uuid.UUID][]*domain.LocationPing
}

// NewLocationStore creates an empty in-memory location store.
func NewLocationStore() *LocationStore {
	return &LocationStore{
		byBooking: make(map[uuid.UUID][]*domain.LocationPing),
	}
}

// Ensure LocationStore implements store.LocationStore
var _ store.LocationStore = (*LocationStore)(nil)

// Append implements store.LocationStore.Append.
func (s *LocationStore) Append(ctx context.Context, ping *domain.LocationPing) error {
	if err := ping.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *ping
	s.byBooking[ping.BookingID] = append(s.byBooking[ping.BookingID], &c)
	return nil
}

// LatestByBooking implements store.LocationStore.LatestByBooking.
func (s *LocationStore) LatestByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) (*domain.LocationPing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pings := s.byBooking[bookingID]
	if len(pings) == 0 {
		return nil, store.ErrPingNotFound
	}

	latest := pings[0]
	for _, p := range pings[1:] {
		if p.ReceivedAt.After(latest.ReceivedAt) {
			latest = p
		}
	}
	c := *latest
	return &c, nil
}

// CountByBooking returns how many pings the booking has logged. Used by tests
// to assert the append-only audit trail.
func (s *LocationStore) CountByBooking(bookingID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byBooking[bookingID])
}
