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

// BookingStore is an in-memory implementation of store.BookingStore.
type BookingStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.Booking
}

// NewBookingStore creates an empty in-memory booking store.
func NewBookingStore() *BookingStore {
	return &BookingStore{
		byID: make(map[uuid.UUID]*domain.Booking),
	}
}

// Ensure BookingStore implements store.BookingStore
var _ store.BookingStore = (*BookingStore)(nil)

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Create implements store.BookingStore.Create.
func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[booking.ID]; exists {
		return store.ErrDuplicate
	}
	s.byID[booking.ID] = cloneBooking(booking)
	return nil
}

// GetByID implements store.BookingStore.GetByID.
func (s *BookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, store.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// Update implements store.BookingStore.Update.
func (s *BookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[booking.ID]; !ok {
		return store.ErrBookingNotFound
	}
	s.byID[booking.ID] = cloneBooking(booking)
	return nil
}

// UpdateStatus implements store.BookingStore.UpdateStatus. The status swap
// happens under the store lock, giving the same guarantee as the SQL
// conditional UPDATE.
func (s *BookingStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return store.ErrBookingNotFound
	}
	if b.Status != from {
		return store.ErrUpdateConflict
	}
	b.Status = to
	return nil
}

// UpdatePayment implements store.BookingStore.UpdatePayment. Both guards
// are checked under the store lock, matching the SQL conditional UPDATE.
func (s *BookingStore) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
	from, to domain.PaymentStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return store.ErrBookingNotFound
	}
	if b.Status != status || b.Payment != from {
		return store.ErrUpdateConflict
	}
	b.Payment = to
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPINState implements store.BookingStore.SetPINState.
func (s *BookingStore) SetPINState(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
	pin string,
	attempts int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return store.ErrBookingNotFound
	}
	if b.Status != status {
		return store.ErrUpdateConflict
	}
	b.VerificationPIN = pin
	b.PINAttempts = attempts
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignProvider implements store.BookingStore.AssignProvider.
func (s *BookingStore) AssignProvider(
	ctx context.Context,
	id, providerID uuid.UUID,
	status domain.BookingStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return store.ErrBookingNotFound
	}
	if b.Status != status {
		return store.ErrUpdateConflict
	}
	b.ProviderID = providerID
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCompletedAt implements store.BookingStore.SetCompletedAt.
func (s *BookingStore) SetCompletedAt(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return store.ErrBookingNotFound
	}
	t := completedAt
	b.CompletedAt = &t
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ListByOwner implements store.BookingStore.ListByOwner.
func (s *BookingStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.byID {
		if b.OwnerID == ownerID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
