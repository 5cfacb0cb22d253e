package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/memory"
)

type ledgerFixture struct {
	svc       LedgerService
	bookings  *memory.BookingStore
	offers    *memory.OfferStore
	providers *memory.ProviderStore
	pets      *memory.PetStore
	ownerID   uuid.UUID
	petID     uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		bookings:  memory.NewBookingStore(),
		offers:    memory.NewOfferStore(),
		providers: memory.NewProviderStore(),
		pets:      memory.NewPetStore(),
		ownerID:   uuid.New(),
		petID:     uuid.New(),
	}
	f.pets.Seed(f.petID, f.ownerID)
	f.svc = NewLedgerService(
		f.bookings, f.offers, f.providers, f.pets,
		events.NewInMemoryEventEmitter(nil), nil,
	)
	return f
}

func (f *ledgerFixture) createBooking(t *testing.T) *domain.Booking {
	t.Helper()
	booking, err := f.svc.CreateBooking(context.Background(), f.ownerID, CreateBookingRequest{
		PetID:       f.petID,
		ServiceType: domain.ServiceTypeWalker,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Price:       5000,
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	booking := f.createBooking(t)

	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, booking.Payment)
	assert.Equal(t, uuid.Nil, booking.ProviderID, "no provider until an offer is accepted")

	stored, err := f.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, stored.ID)
}

func TestCreateBooking_PetNotOwned(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	otherPet := uuid.New()
	f.pets.Seed(otherPet, uuid.New())

	_, err := f.svc.CreateBooking(context.Background(), f.ownerID, CreateBookingRequest{
		PetID:       otherPet,
		ServiceType: domain.ServiceTypeWalker,
		ScheduledAt: time.Now().Add(time.Hour),
		Price:       5000,
	})
	assert.ErrorIs(t, err, domain.ErrPetNotOwned)
}

func TestCreateBooking_UnknownPet(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.ownerID, CreateBookingRequest{
		PetID:       uuid.New(),
		ServiceType: domain.ServiceTypeWalker,
		ScheduledAt: time.Now().Add(time.Hour),
		Price:       5000,
	})
	assert.ErrorIs(t, err, ErrPetNotFound)
}

func TestCreateBooking_PastSchedule(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.ownerID, CreateBookingRequest{
		PetID:       f.petID,
		ServiceType: domain.ServiceTypeDaycare,
		ScheduledAt: time.Now().Add(-time.Hour),
		Price:       5000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestGetBooking_Authorization(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	got, err := f.svc.GetBooking(context.Background(), f.ownerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = f.svc.GetBooking(context.Background(), uuid.New(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetBooking_NotFound(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	_, err := f.svc.GetBooking(context.Background(), f.ownerID, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListBookings_NewestFirst(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)

	first := f.createBooking(t)
	second := f.createBooking(t)

	list, err := f.svc.ListBookings(context.Background(), f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []uuid.UUID{list[0].ID, list[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestCancelBooking_Pending_ClosesOpenOffers(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	providerID := uuid.New()
	offer, err := domain.NewInboxOffer(booking.ID, providerID, 300)
	require.NoError(t, err)
	require.NoError(t, f.offers.Create(context.Background(), offer))

	cancelled, err := f.svc.CancelBooking(context.Background(), f.ownerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	stored, err := f.offers.GetByID(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusExpired, stored.Status)
}

func TestCancelBooking_Confirmed_ReleasesCapacity(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)
	day := booking.ServiceDay()

	providerID := uuid.New()
	f.providers.Seed(&domain.Provider{
		ID: providerID, ServiceType: domain.ServiceTypeWalker, Active: true,
	}, day, 3)
	require.NoError(t, f.providers.ReserveCapacity(context.Background(), providerID, day))

	booking.ProviderID = providerID
	booking.Status = domain.BookingStatusConfirmed
	require.NoError(t, f.bookings.Update(context.Background(), booking))

	_, err := f.svc.CancelBooking(context.Background(), f.ownerID, booking.ID)
	require.NoError(t, err)

	capacity, err := f.providers.GetCapacity(context.Background(), providerID, day)
	require.NoError(t, err)
	assert.Equal(t, 0, capacity.CapacityUsed)
}

func TestCancelBooking_Unauthorized(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	_, err := f.svc.CancelBooking(context.Background(), uuid.New(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCancelBooking_InProgressRejected(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	booking.ProviderID = uuid.New()
	booking.Status = domain.BookingStatusInProgress
	require.NoError(t, f.bookings.Update(context.Background(), booking))

	_, err := f.svc.CancelBooking(context.Background(), f.ownerID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	_, err := f.svc.CancelBooking(context.Background(), f.ownerID, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(context.Background(), f.ownerID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCompleteBooking(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)
	day := booking.ServiceDay()

	providerID := uuid.New()
	f.providers.Seed(&domain.Provider{
		ID: providerID, ServiceType: domain.ServiceTypeWalker, Active: true,
	}, day, 2)
	require.NoError(t, f.providers.ReserveCapacity(context.Background(), providerID, day))

	booking.ProviderID = providerID
	booking.Status = domain.BookingStatusInProgress
	booking.Payment = domain.PaymentStatusPaid
	require.NoError(t, f.bookings.Update(context.Background(), booking))

	completed, err := f.svc.CompleteBooking(context.Background(), providerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	capacity, err := f.providers.GetCapacity(context.Background(), providerID, day)
	require.NoError(t, err)
	assert.Equal(t, 0, capacity.CapacityUsed)
}

func TestCompleteBooking_OnlyAssignedProvider(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	booking.ProviderID = uuid.New()
	booking.Status = domain.BookingStatusInProgress
	require.NoError(t, f.bookings.Update(context.Background(), booking))

	_, err := f.svc.CompleteBooking(context.Background(), uuid.New(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCompleteBooking_NotInProgress(t *testing.T) {
	t.Parallel()
	f := newLedgerFixture(t)
	booking := f.createBooking(t)

	providerID := uuid.New()
	booking.ProviderID = providerID
	booking.Status = domain.BookingStatusConfirmed
	require.NoError(t, f.bookings.Update(context.Background(), booking))

	_, err := f.svc.CompleteBooking(context.Background(), providerID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
