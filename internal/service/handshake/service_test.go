package handshake

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/memory"
)

type handshakeFixture struct {
	svc        HandshakeService
	bookings   *memory.BookingStore
	ownerID    uuid.UUID
	providerID uuid.UUID
	booking    *domain.Booking
}

func newHandshakeFixture(t *testing.T) *handshakeFixture {
	t.Helper()

	f := &handshakeFixture{
		bookings:   memory.NewBookingStore(),
		ownerID:    uuid.New(),
		providerID: uuid.New(),
	}

	booking, err := domain.NewBooking(
		f.ownerID, uuid.New(), domain.ServiceTypeWalker,
		time.Now().Add(24*time.Hour), 5000,
	)
	require.NoError(t, err)
	booking.ProviderID = f.providerID
	booking.Status = domain.BookingStatusConfirmed
	booking.Payment = domain.PaymentStatusPaid
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	f.booking = booking

	f.svc = NewHandshakeService(
		f.bookings, events.NewInMemoryEventEmitter(nil),
		config.HandshakeConfig{PINLength: 6, MaxAttempts: 5}, nil,
	)
	return f
}

func TestGeneratePIN(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Len(t, pin, 6)
	for _, c := range pin {
		assert.True(t, c >= '0' && c <= '9', "PIN must be numeric")
	}
}

func TestGeneratePIN_IdempotentUntilConsumed(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	first, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	second, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGeneratePIN_RequiresPaidBooking(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	f.booking.Payment = domain.PaymentStatusUnpaid
	require.NoError(t, f.bookings.Update(context.Background(), f.booking))

	_, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestGeneratePIN_RequiresConfirmedBooking(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	f.booking.Status = domain.BookingStatusPending
	f.booking.ProviderID = uuid.Nil
	require.NoError(t, f.bookings.Update(context.Background(), f.booking))

	_, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestGeneratePIN_OnlyOwner(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	_, err := f.svc.GeneratePIN(context.Background(), f.providerID, f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyPIN_StartsService(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, pin))

	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, booking.Status)
	assert.Empty(t, booking.VerificationPIN, "PIN is consumed on success")
}

func TestVerifyPIN_ConsumedPINCannotBeReused(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, pin))

	err = f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, pin)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestVerifyPIN_OnlyAssignedProvider(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)

	err = f.svc.VerifyPIN(context.Background(), uuid.New(), f.booking.ID, pin)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyPIN_NoPINIssued(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	err := f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, "123456")
	assert.ErrorIs(t, err, ErrPINNotIssued)
}

func TestVerifyPIN_MismatchCountsAttempts(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pin {
		wrong = "111111"
	}

	for i := 0; i < 4; i++ {
		err := f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, wrong)
		assert.ErrorIs(t, err, ErrPINMismatch)
	}

	// Fifth failure reaches the threshold and locks the handshake.
	err = f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, wrong)
	assert.ErrorIs(t, err, ErrHandshakeLocked)

	// The invalidated PIN no longer works even if guessed right.
	err = f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, pin)
	assert.ErrorIs(t, err, ErrPINNotIssued)

	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status, "booking stays confirmed")
}

func TestVerifyPIN_CancelledBookingStaysCancelled(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)

	// The owner cancels between PIN issue and the provider's arrival.
	require.NoError(t, f.bookings.UpdateStatus(
		context.Background(), f.booking.ID,
		domain.BookingStatusConfirmed, domain.BookingStatusCancelled,
	))

	err = f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, pin)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status, "a correct PIN cannot revive a cancelled booking")
}

func TestVerifyPIN_ReissueAfterLockout(t *testing.T) {
	t.Parallel()
	f := newHandshakeFixture(t)

	pin, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pin {
		wrong = "111111"
	}
	for i := 0; i < 5; i++ {
		_ = f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, wrong)
	}

	// A fresh PIN unlocks the handshake.
	fresh, err := f.svc.GeneratePIN(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyPIN(context.Background(), f.providerID, f.booking.ID, fresh))

	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, booking.Status)
}
