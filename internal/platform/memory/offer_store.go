package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// OfferStore is an in-memory implementation of store.OfferStore. Open offers
// are indexed by provider so inbox listing avoids a full scan.
type OfferStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.InboxOffer
	byProvider map[uuid.UUID]map[uuid.UUID]struct{} // provider -> set of open offer IDs
}

// NewOfferStore creates an empty in-memory offer store.
func NewOfferStore() *OfferStore {
	return &OfferStore{
		byID:       make(map[uuid.UUID]*domain.InboxOffer),
		byProvider: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Ensure OfferStore implements store.OfferStore
var _ store.OfferStore = (*OfferStore)(nil)

func cloneOffer(o *domain.InboxOffer) *domain.InboxOffer {
	c := *o
	return &c
}

// indexOpen must be called with the write lock held.
func (s *OfferStore) indexOpen(o *domain.InboxOffer) {
	set, ok := s.byProvider[o.ProviderID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		s.byProvider[o.ProviderID] = set
	}
	set[o.ID] = struct{}{}
}

// unindexOpen must be called with the write lock held.
func (s *OfferStore) unindexOpen(o *domain.InboxOffer) {
	if set, ok := s.byProvider[o.ProviderID]; ok {
		delete(set, o.ID)
	}
}

// Create implements store.OfferStore.Create.
func (s *OfferStore) Create(ctx context.Context, offer *domain.InboxOffer) error {
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[offer.ID]; exists {
		return store.ErrDuplicate
	}
	// One open offer per (booking, provider) pair.
	for id := range s.byProvider[offer.ProviderID] {
		if existing := s.byID[id]; existing != nil && existing.BookingID == offer.BookingID {
			return store.ErrDuplicate
		}
	}

	stored := cloneOffer(offer)
	s.byID[stored.ID] = stored
	if stored.Status == domain.OfferStatusOpen {
		s.indexOpen(stored)
	}
	return nil
}

// GetByID implements store.OfferStore.GetByID.
func (s *OfferStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, store.ErrOfferNotFound
	}
	return cloneOffer(o), nil
}

// ListOpenByProvider implements store.OfferStore.ListOpenByProvider.
func (s *OfferStore) ListOpenByProvider(
	ctx context.Context,
	providerID uuid.UUID,
) ([]*domain.InboxOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.InboxOffer, 0, len(s.byProvider[providerID]))
	for id := range s.byProvider[providerID] {
		if o := s.byID[id]; o != nil && o.Status == domain.OfferStatusOpen {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListByBooking implements store.OfferStore.ListByBooking.
func (s *OfferStore) ListByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*domain.InboxOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.InboxOffer, 0)
	for _, o := range s.byID {
		if o.BookingID == bookingID {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus implements store.OfferStore.UpdateStatus. The swap happens
// under the store lock so a resolved offer can never be resolved twice.
func (s *OfferStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.OfferStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return store.ErrOfferNotFound
	}
	if o.Status != from {
		return store.ErrUpdateConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	if from == domain.OfferStatusOpen && to != domain.OfferStatusOpen {
		s.unindexOpen(o)
	}
	return nil
}

// ExpireOverdue implements store.OfferStore.ExpireOverdue.
func (s *OfferStore) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, o := range s.byID {
		if o.Status == domain.OfferStatusOpen && o.IsExpired(now) {
			o.Status = domain.OfferStatusExpired
			o.UpdatedAt = now
			s.unindexOpen(o)
			expired++
		}
	}
	return expired, nil
}
