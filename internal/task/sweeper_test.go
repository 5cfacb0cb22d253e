package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/platform/memory"
)

func TestSweepOnce_ExpiresOnlyOverdueOffers(t *testing.T) {
	t.Parallel()

	offers := memory.NewOfferStore()

	overdue := &domain.InboxOffer{
		ID:         uuid.New(),
		BookingID:  uuid.New(),
		ProviderID: uuid.New(),
		TTLSeconds: 60,
		Status:     domain.OfferStatusOpen,
		CreatedAt:  time.Now().Add(-2 * time.Minute),
		UpdatedAt:  time.Now().Add(-2 * time.Minute),
	}
	require.NoError(t, offers.Create(context.Background(), overdue))

	fresh, err := domain.NewInboxOffer(uuid.New(), uuid.New(), 300)
	require.NoError(t, err)
	require.NoError(t, offers.Create(context.Background(), fresh))

	sweeper := NewOfferSweeper(offers, time.Second, nil)
	sweeper.SweepOnce(context.Background())

	swept, err := offers.GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusExpired, swept.Status)

	kept, err := offers.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusOpen, kept.Status)
}

func TestSweeper_StartStop(t *testing.T) {
	t.Parallel()

	offers := memory.NewOfferStore()
	sweeper := NewOfferSweeper(offers, 10*time.Millisecond, nil)

	overdue := &domain.InboxOffer{
		ID:         uuid.New(),
		BookingID:  uuid.New(),
		ProviderID: uuid.New(),
		TTLSeconds: 1,
		Status:     domain.OfferStatusOpen,
		CreatedAt:  time.Now().Add(-time.Minute),
		UpdatedAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, offers.Create(context.Background(), overdue))

	sweeper.Start()

	assert.Eventually(t, func() bool {
		offer, err := offers.GetByID(context.Background(), overdue.ID)
		return err == nil && offer.Status == domain.OfferStatusExpired
	}, time.Second, 10*time.Millisecond)

	sweeper.Stop()
}
