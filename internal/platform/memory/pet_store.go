package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// PetStore is an in-memory implementation of store.PetStore.
type PetStore struct {
	mu      sync.RWMutex
	ownerOf map[uuid.UUID]uuid.UUID
}

// NewPetStore creates an empty in-memory pet store.
func NewPetStore() *PetStore {
	return &PetStore{
		ownerOf: make(map[uuid.UUID]uuid.UUID),
	}
}

// Ensure PetStore implements store.PetStore
var _ store.PetStore = (*PetStore)(nil)

// Seed registers a pet under an owner. Intended for tests and the memory
// development backend; pet profiles are written by an external collaborator.
func (s *PetStore) Seed(petID, ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerOf[petID] = ownerID
}

// BelongsToOwner implements store.PetStore.BelongsToOwner.
func (s *PetStore) BelongsToOwner(ctx context.Context, petID, ownerID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.ownerOf[petID]
	if !ok {
		return false, store.ErrPetNotFound
	}
	return owner == ownerID, nil
}
