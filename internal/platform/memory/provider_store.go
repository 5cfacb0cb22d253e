package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

type capacityKey struct {
	providerID uuid.UUID
	day        string
}

// ProviderStore is an in-memory implementation of store.ProviderStore.
type ProviderStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.Provider
	capacities map[capacityKey]*domain.ProviderCapacity
}

// NewProviderStore creates an empty in-memory provider store.
func NewProviderStore() *ProviderStore {
	return &ProviderStore{
		byID:       make(map[uuid.UUID]*domain.Provider),
		capacities: make(map[capacityKey]*domain.ProviderCapacity),
	}
}

// Ensure ProviderStore implements store.ProviderStore
var _ store.ProviderStore = (*ProviderStore)(nil)

// Seed registers a provider with its capacity for a service window. Intended
// for tests and the memory development backend; provider onboarding itself
// belongs to an external collaborator.
func (s *ProviderStore) Seed(provider *domain.Provider, day string, capacityMax int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *provider
	s.byID[p.ID] = &p
	s.capacities[capacityKey{p.ID, day}] = &domain.ProviderCapacity{
		ProviderID:   p.ID,
		Day:          day,
		CapacityMax:  capacityMax,
		CapacityUsed: 0,
	}
}

// GetByID implements store.ProviderStore.GetByID.
func (s *ProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrProviderNotFound
	}
	c := *p
	return &c, nil
}

// ListEligible implements store.ProviderStore.ListEligible.
func (s *ProviderStore) ListEligible(
	ctx context.Context,
	serviceType domain.ServiceType,
	day string,
) ([]*domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Provider, 0)
	for _, p := range s.byID {
		if !p.Active || p.ServiceType != serviceType {
			continue
		}
		cap, ok := s.capacities[capacityKey{p.ID, day}]
		if !ok || !cap.HasRoom() {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

// GetCapacity implements store.ProviderStore.GetCapacity.
func (s *ProviderStore) GetCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) (*domain.ProviderCapacity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cap, ok := s.capacities[capacityKey{providerID, day}]
	if !ok {
		return nil, store.ErrProviderNotFound
	}
	c := *cap
	return &c, nil
}

// ReserveCapacity implements store.ProviderStore.ReserveCapacity. The
// increment happens under the store lock, matching the SQL conditional
// UPDATE ... WHERE capacity_used < capacity_max.
func (s *ProviderStore) ReserveCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cap, ok := s.capacities[capacityKey{providerID, day}]
	if !ok {
		return store.ErrProviderNotFound
	}
	if !cap.HasRoom() {
		return store.ErrUpdateConflict
	}
	cap.CapacityUsed++
	return nil
}

// ReleaseCapacity implements store.ProviderStore.ReleaseCapacity.
func (s *ProviderStore) ReleaseCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cap, ok := s.capacities[capacityKey{providerID, day}]
	if !ok {
		return store.ErrProviderNotFound
	}
	if cap.CapacityUsed <= 0 {
		return store.ErrUpdateConflict
	}
	cap.CapacityUsed--
	return nil
}
