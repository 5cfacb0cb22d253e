package relay

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

type relayFixture struct {
	svc        RelayService
	bookings   *memory.BookingStore
	locations  *memory.LocationStore
	ownerID    uuid.UUID
	providerID uuid.UUID
	booking    *domain.Booking
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	f := &relayFixture{
		bookings:   memory.NewBookingStore(),
		locations:  memory.NewLocationStore(),
		ownerID:    uuid.New(),
		providerID: uuid.New(),
	}

	booking, err := domain.NewBooking(
		f.ownerID, uuid.New(), domain.ServiceTypeWalker,
		time.Now().Add(24*time.Hour), 5000,
	)
	require.NoError(t, err)
	booking.ProviderID = f.providerID
	booking.Status = domain.BookingStatusInProgress
	booking.Payment = domain.PaymentStatusPaid
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	f.booking = booking

	f.svc = NewRelayService(f.bookings, f.locations, nil)
	return f
}

func TestReportLocation(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	ping, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 52.52, Longitude: 13.405, Accuracy: 5, Speed: 1.2,
	})
	require.NoError(t, err)
	assert.Equal(t, f.booking.ID, ping.BookingID)
	assert.False(t, ping.ReceivedAt.IsZero())

	assert.Equal(t, 1, f.locations.CountByBooking(f.booking.ID), "ping lands in the audit log")
}

func TestReportLocation_OnlyAssignedProvider(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.ReportLocation(context.Background(), uuid.New(), f.booking.ID, ReportLocationRequest{
		Latitude: 1, Longitude: 1,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReportLocation_DroppedOutsideInProgress(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	// A ping against a booking that is no longer in progress is dropped
	// silently: no ping, no error, so a device loop that has not yet seen
	// the completion keeps running.
	for _, status := range []domain.BookingStatus{
		domain.BookingStatusConfirmed,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	} {
		f.booking.Status = status
		require.NoError(t, f.bookings.Update(context.Background(), f.booking))

		ping, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
			Latitude: 1, Longitude: 1,
		})
		assert.NoError(t, err, "status %s", status)
		assert.Nil(t, ping, "status %s", status)
	}

	assert.Equal(t, 0, f.locations.CountByBooking(f.booking.ID), "dropped pings stay out of the audit log")

	_, err := f.svc.GetCurrent(context.Background(), f.ownerID, f.booking.ID)
	assert.ErrorIs(t, err, ErrNoLocation, "dropped pings never become the live position")
}

func TestReportLocation_InvalidCoordinates(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 123, Longitude: 500,
	})
	assert.ErrorIs(t, err, domain.ErrCoordinatesInvalid)
}

func TestGetCurrent_ServesLatestPing(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 10, Longitude: 20,
	})
	require.NoError(t, err)
	second, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 11, Longitude: 21,
	})
	require.NoError(t, err)

	current, err := f.svc.GetCurrent(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestGetCurrent_NoPingsYet(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.GetCurrent(context.Background(), f.ownerID, f.booking.ID)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestGetCurrent_Unauthorized(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.GetCurrent(context.Background(), uuid.New(), f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetCurrent_FallsBackToLogAfterChannelClose(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	ping, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 10, Longitude: 20,
	})
	require.NoError(t, err)

	f.svc.CloseChannel(f.booking.ID)

	current, err := f.svc.GetCurrent(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, ping.ID, current.ID, "last known position survives channel close")
}

func TestStalePingDoesNotRegressLivePosition(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	fresh, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 10, Longitude: 20,
	})
	require.NoError(t, err)

	// Inject an older ping directly into the cache path.
	impl := f.svc.(*relayServiceImpl)
	stale := &domain.LocationPing{
		ID:         uuid.New(),
		BookingID:  f.booking.ID,
		Latitude:   9,
		Longitude:  19,
		ReceivedAt: fresh.ReceivedAt.Add(-time.Minute),
	}
	impl.advance(stale, impl.logger)

	current, err := f.svc.GetCurrent(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, current.ID)
}

func TestHandleEvent_ClosesChannelOnTerminalEvents(t *testing.T) {
	t.Parallel()
	f := newRelayFixture(t)

	_, err := f.svc.ReportLocation(context.Background(), f.providerID, f.booking.ID, ReportLocationRequest{
		Latitude: 10, Longitude: 20,
	})
	require.NoError(t, err)

	handler := f.svc.(events.EventHandler)
	event, err := events.NewBookingEvent(events.TypeBookingCompleted, f.booking.ID, nil)
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	impl := f.svc.(*relayServiceImpl)
	impl.mu.RLock()
	_, cached := impl.latest[f.booking.ID]
	impl.mu.RUnlock()
	assert.False(t, cached, "live position dropped on completion")
}
