package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ RelayService = (*relayServiceImpl)(nil)

// The relay also listens for lifecycle events to close channels when a
// booking terminates.
var _ events.EventHandler = (*relayServiceImpl)(nil)

// relayServiceImpl implements the RelayService interface.
type relayServiceImpl struct {
	bookings  store.BookingStore
	locations store.LocationStore
	logger    *slog.Logger

	// latest holds the live position per booking. Guarded by mu; reads
	// take only the read lock so watchers never queue behind a writer.
	mu     sync.RWMutex
	latest map[uuid.UUID]*domain.LocationPing
}

// NewRelayService creates a new RelayService implementation.
func NewRelayService(
	bookings store.BookingStore,
	locations store.LocationStore,
	log *slog.Logger,
) RelayService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if locations == nil {
		panic("locations cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &relayServiceImpl{
		bookings:  bookings,
		locations: locations,
		latest:    make(map[uuid.UUID]*domain.LocationPing),
		logger:    log.With(slog.String("component", "relay_service")),
	}
}

// ReportLocation implements RelayService.ReportLocation.
func (s *relayServiceImpl) ReportLocation(
	ctx context.Context,
	providerID, bookingID uuid.UUID,
	req ReportLocationRequest,
) (*domain.LocationPing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "report_location", Message: "failed to load booking", Err: err}
	}
	if booking.ProviderID != providerID {
		return nil, domain.ErrUnauthorized
	}
	// Dropped, not an error. The caller sees success with no ping so its
	// reporting loop survives a completion it has not observed yet.
	if booking.Status != domain.BookingStatusInProgress {
		log.Debug("ping dropped, channel not open",
			slog.String("booking_id", bookingID.String()),
			slog.String("status", string(booking.Status)))
		return nil, nil
	}

	ping, err := domain.NewLocationPing(bookingID, req.Latitude, req.Longitude, req.Accuracy, req.Speed)
	if err != nil {
		return nil, err
	}

	if err := s.locations.Append(ctx, ping); err != nil {
		return nil, &ServiceError{Operation: "report_location", Message: "failed to save ping", Err: err}
	}

	s.advance(ping, log)
	return ping, nil
}

// GetCurrent implements RelayService.GetCurrent.
func (s *relayServiceImpl) GetCurrent(
	ctx context.Context,
	actorID, bookingID uuid.UUID,
) (*domain.LocationPing, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "get_current", Message: "failed to load booking", Err: err}
	}
	if booking.OwnerID != actorID && booking.ProviderID != actorID {
		return nil, domain.ErrUnauthorized
	}

	return s.CurrentForBooking(ctx, bookingID)
}

// CurrentForBooking implements RelayService.CurrentForBooking.
func (s *relayServiceImpl) CurrentForBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) (*domain.LocationPing, error) {
	s.mu.RLock()
	ping, ok := s.latest[bookingID]
	s.mu.RUnlock()
	if ok {
		return ping, nil
	}

	// Cache miss (fresh process or channel already closed): fall back to
	// the log so a watcher still sees the last known position.
	ping, err := s.locations.LatestByBooking(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNoLocation
		}
		return nil, &ServiceError{Operation: "get_current", Message: "failed to load latest ping", Err: err}
	}
	return ping, nil
}

// CloseChannel implements RelayService.CloseChannel.
func (s *relayServiceImpl) CloseChannel(bookingID uuid.UUID) {
	s.mu.Lock()
	delete(s.latest, bookingID)
	s.mu.Unlock()
	s.logger.Debug("relay channel closed", slog.String("booking_id", bookingID.String()))
}

// HandleEvent implements events.EventHandler. Terminal lifecycle events
// close the booking's relay channel.
func (s *relayServiceImpl) HandleEvent(_ context.Context, event *events.BookingEvent) error {
	switch event.Type {
	case events.TypeBookingCompleted, events.TypeBookingCancelled:
		s.CloseChannel(event.BookingID)
	}
	return nil
}

// advance moves the live position forward, never backward. A ping older
// than the cached one still sits in the audit log but is not served.
func (s *relayServiceImpl) advance(ping *domain.LocationPing, log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.latest[ping.BookingID]
	if ok && current.ReceivedAt.After(ping.ReceivedAt) {
		log.Debug("stale ping kept out of live position",
			slog.String("booking_id", ping.BookingID.String()),
			slog.Time("received_at", ping.ReceivedAt))
		return
	}
	s.latest[ping.BookingID] = ping
}
