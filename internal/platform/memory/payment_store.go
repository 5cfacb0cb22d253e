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

// PaymentStore is an in-memory implementation of store.PaymentStore.
type PaymentStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.PaymentRecord
}

// NewPaymentStore creates an empty in-memory payment store.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		byID: make(map[uuid.UUID]*domain.PaymentRecord),
	}
}

// Ensure PaymentStore implements store.PaymentStore
var _ store.PaymentStore = (*PaymentStore)(nil)

func clonePayment(p *domain.PaymentRecord) *domain.PaymentRecord {
	c := *p
	return &c
}

// Create implements store.PaymentStore.Create.
func (s *PaymentStore) Create(ctx context.Context, record *domain.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.ID]; exists {
		return store.ErrDuplicate
	}
	s.byID[record.ID] = clonePayment(record)
	return nil
}

// GetByID implements store.PaymentStore.GetByID.
func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

// ListByBooking implements store.PaymentStore.ListByBooking.
func (s *PaymentStore) ListByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*domain.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.PaymentRecord, 0)
	for _, p := range s.byID {
		if p.BookingID == bookingID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateReviewStatus implements store.PaymentStore.UpdateReviewStatus.
func (s *PaymentStore) UpdateReviewStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.ReviewStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return store.ErrPaymentNotFound
	}
	if p.ReviewStatus != from {
		return store.ErrUpdateConflict
	}
	p.ReviewStatus = to
	p.UpdatedAt = time.Now().UTC()
	return nil
}
