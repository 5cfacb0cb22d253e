package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// SafetyStore is an in-memory implementation of store.SafetyStore.
type SafetyStore struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]*domain.EmergencyContact
	tokens   map[string]*domain.SafetyShareToken
	events   []*domain.SOSEvent
}

// NewSafetyStore creates an empty in-memory safety store.
func NewSafetyStore() *SafetyStore {
	return &SafetyStore{
		contacts: make(map[uuid.UUID]*domain.EmergencyContact),
		tokens:   make(map[string]*domain.SafetyShareToken),
	}
}

// Ensure SafetyStore implements store.SafetyStore
var _ store.SafetyStore = (*SafetyStore)(nil)

// CreateContact implements store.SafetyStore.CreateContact.
func (s *SafetyStore) CreateContact(ctx context.Context, contact *domain.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contacts[contact.ID]; exists {
		return store.ErrDuplicate
	}
	c := *contact
	s.contacts[contact.ID] = &c
	return nil
}

// GetContact implements store.SafetyStore.GetContact.
func (s *SafetyStore) GetContact(ctx context.Context, id uuid.UUID) (*domain.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, store.ErrContactNotFound
	}
	c := *contact
	return &c, nil
}

// ListContactsByOwner implements store.SafetyStore.ListContactsByOwner.
func (s *SafetyStore) ListContactsByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.EmergencyContact, 0)
	for _, contact := range s.contacts {
		if contact.OwnerID == ownerID {
			c := *contact
			out = append(out, &c)
		}
	}
	return out, nil
}

// DeleteContact implements store.SafetyStore.DeleteContact.
func (s *SafetyStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return store.ErrContactNotFound
	}
	delete(s.contacts, id)
	return nil
}

// CreateShareToken implements store.SafetyStore.CreateShareToken.
func (s *SafetyStore) CreateShareToken(ctx context.Context, token *domain.SafetyShareToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; exists {
		return store.ErrDuplicate
	}
	c := *token
	s.tokens[token.Token] = &c
	return nil
}

// GetShareToken implements store.SafetyStore.GetShareToken.
func (s *SafetyStore) GetShareToken(ctx context.Context, token string) (*domain.SafetyShareToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, store.ErrShareTokenNotFound
	}
	c := *t
	return &c, nil
}

// CreateSOSEvent implements store.SafetyStore.CreateSOSEvent.
func (s *SafetyStore) CreateSOSEvent(ctx context.Context, event *domain.SOSEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *event
	s.events = append(s.events, &c)
	return nil
}

// SOSEvents returns all recorded SOS events. Used by tests.
func (s *SafetyStore) SOSEvents() []*domain.SOSEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SOSEvent, 0, len(s.events))
	for _, e := range s.events {
		c := *e
		out = append(out, &c)
	}
	return out
}
