package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/keymutex"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ DispatchService = (*dispatchServiceImpl)(nil)

// dispatchServiceImpl implements the DispatchService interface.
type dispatchServiceImpl struct {
	bookings  store.BookingStore
	offers    store.OfferStore
	providers store.ProviderStore
	emitter   events.EventEmitter
	locks     *keymutex.KeyedMutex
	cfg       config.DispatchConfig
	timeFunc  func() time.Time // Injectable for testing
	logger    *slog.Logger
}

// NewDispatchService creates a new DispatchService implementation.
func NewDispatchService(
	bookings store.BookingStore,
	offers store.OfferStore,
	providers store.ProviderStore,
	emitter events.EventEmitter,
	cfg config.DispatchConfig,
	log *slog.Logger,
) DispatchService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if offers == nil {
		panic("offers cannot be nil")
	}
	if providers == nil {
		panic("providers cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &dispatchServiceImpl{
		bookings:  bookings,
		offers:    offers,
		providers: providers,
		emitter:   emitter,
		locks:     keymutex.New(),
		cfg:       cfg,
		timeFunc:  time.Now,
		logger:    log.With(slog.String("component", "dispatch_service")),
	}
}

// DispatchBooking implements DispatchService.DispatchBooking.
func (s *dispatchServiceImpl) DispatchBooking(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
) ([]*domain.InboxOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "dispatch_booking", Message: "failed to load booking", Err: err}
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrBookingNotPending, booking.Status)
	}

	eligible, err := s.providers.ListEligible(ctx, booking.ServiceType, booking.ServiceDay())
	if err != nil {
		return nil, &ServiceError{Operation: "dispatch_booking", Message: "failed to list providers", Err: err}
	}
	if len(eligible) == 0 {
		log.Info("no eligible providers for booking",
			slog.String("booking_id", bookingID.String()),
			slog.String("service_type", string(booking.ServiceType)))
		return nil, ErrNoEligibleProviders
	}

	created := make([]*domain.InboxOffer, 0, s.cfg.MaxOpenOffers)
	for _, provider := range eligible {
		if len(created) >= s.cfg.MaxOpenOffers {
			break
		}
		offer, err := domain.NewInboxOffer(bookingID, provider.ID, s.cfg.OfferTTLSeconds)
		if err != nil {
			return nil, &ServiceError{Operation: "dispatch_booking", Message: "failed to build offer", Err: err}
		}
		if err := s.offers.Create(ctx, offer); err != nil {
			// A previous round already offered this booking to the
			// provider; skip rather than double up.
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return nil, &ServiceError{Operation: "dispatch_booking", Message: "failed to save offer", Err: err}
		}
		created = append(created, offer)
	}

	if len(created) == 0 {
		return nil, ErrNoEligibleProviders
	}

	s.emit(ctx, events.TypeOfferDispatched, bookingID, map[string]int{"offer_count": len(created)})
	log.Info("booking dispatched",
		slog.String("booking_id", bookingID.String()),
		slog.Int("offer_count", len(created)))
	return created, nil
}

// ListInbox implements DispatchService.ListInbox.
func (s *dispatchServiceImpl) ListInbox(
	ctx context.Context,
	providerID uuid.UUID,
) ([]*InboxEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	open, err := s.offers.ListOpenByProvider(ctx, providerID)
	if err != nil {
		return nil, &ServiceError{Operation: "list_inbox", Message: "failed to list offers", Err: err}
	}

	now := s.timeFunc()
	entries := make([]*InboxEntry, 0, len(open))
	for _, offer := range open {
		if offer.IsExpired(now) {
			// Lazy expiry: mark it on read so the sweep interval never
			// leaks an acceptable-looking dead offer into the inbox.
			err := s.offers.UpdateStatus(ctx, offer.ID, domain.OfferStatusOpen, domain.OfferStatusExpired)
			if err != nil && !errors.Is(err, store.ErrUpdateConflict) {
				log.Error("failed to lazily expire offer",
					slog.String("error", err.Error()),
					slog.String("offer_id", offer.ID.String()))
			}
			continue
		}
		booking, err := s.bookings.GetByID(ctx, offer.BookingID)
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, &ServiceError{Operation: "list_inbox", Message: "failed to load booking", Err: err}
		}
		entries = append(entries, &InboxEntry{
			Offer:            offer,
			Booking:          booking,
			ExpiresInSeconds: offer.RemainingSeconds(now),
		})
	}
	return entries, nil
}

// RespondToOffer implements DispatchService.RespondToOffer.
func (s *dispatchServiceImpl) RespondToOffer(
	ctx context.Context,
	providerID, offerID uuid.UUID,
	accept bool,
) (*OfferResolution, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrOfferNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to load offer", Err: err}
	}
	if offer.ProviderID != providerID {
		return nil, domain.ErrUnauthorized
	}

	if !accept {
		return s.reject(ctx, offer)
	}
	return s.accept(ctx, offer)
}

func (s *dispatchServiceImpl) reject(
	ctx context.Context,
	offer *domain.InboxOffer,
) (*OfferResolution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if offer.IsExpired(s.timeFunc()) {
		s.expireOffer(ctx, offer.ID, log)
		return nil, ErrOfferExpired
	}

	err := s.offers.UpdateStatus(ctx, offer.ID, domain.OfferStatusOpen, domain.OfferStatusRejected)
	if err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: offer already resolved", domain.ErrConflict)
		}
		if store.IsNotFoundError(err) {
			return nil, ErrOfferNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to reject offer", Err: err}
	}

	offer.Status = domain.OfferStatusRejected
	offer.UpdatedAt = s.timeFunc().UTC()

	// The booking is untouched by a rejection; re-read it so the provider
	// still gets the current snapshot.
	booking, err := s.bookings.GetByID(ctx, offer.BookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to load booking", Err: err}
	}

	log.Info("offer rejected",
		slog.String("offer_id", offer.ID.String()),
		slog.String("booking_id", offer.BookingID.String()))
	return &OfferResolution{Offer: offer, Booking: booking}, nil
}

// accept serializes per booking so two providers racing for the same booking
// resolve deterministically: one wins, the other observes the conflict.
func (s *dispatchServiceImpl) accept(
	ctx context.Context,
	offer *domain.InboxOffer,
) (*OfferResolution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.locks.Lock(offer.BookingID)
	defer s.locks.Unlock(offer.BookingID)

	// Re-read under the lock; the offer may have been resolved or swept
	// while we waited.
	current, err := s.offers.GetByID(ctx, offer.ID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrOfferNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to load offer", Err: err}
	}
	if current.Status != domain.OfferStatusOpen {
		if current.Status == domain.OfferStatusExpired {
			return nil, ErrOfferExpired
		}
		return nil, fmt.Errorf("%w: offer already resolved", domain.ErrConflict)
	}
	if current.IsExpired(s.timeFunc()) {
		s.expireOffer(ctx, current.ID, log)
		return nil, ErrOfferExpired
	}

	booking, err := s.bookings.GetByID(ctx, current.BookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to load booking", Err: err}
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking already %s", domain.ErrConflict, booking.Status)
	}

	day := booking.ServiceDay()
	if err := s.providers.ReserveCapacity(ctx, current.ProviderID, day); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, ErrNoCapacity
		}
		if store.IsNotFoundError(err) {
			return nil, ErrNoCapacity
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to reserve capacity", Err: err}
	}

	if err := s.offers.UpdateStatus(ctx, current.ID, domain.OfferStatusOpen, domain.OfferStatusAccepted); err != nil {
		s.releaseCapacity(ctx, current.ProviderID, day, log)
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: offer already resolved", domain.ErrConflict)
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to accept offer", Err: err}
	}

	// Record the provider while the booking is still pending, then flip
	// the status. Ordering matters: once the booking reads confirmed the
	// provider is already on it, and neither write can land on a booking
	// the owner cancelled in the meantime.
	if err := s.bookings.AssignProvider(
		ctx, booking.ID, current.ProviderID, domain.BookingStatusPending,
	); err != nil {
		s.releaseCapacity(ctx, current.ProviderID, day, log)
		s.expireAccepted(ctx, current.ID, log)
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during acceptance", domain.ErrConflict)
		}
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to assign provider", Err: err}
	}

	if err := s.bookings.UpdateStatus(
		ctx, booking.ID, domain.BookingStatusPending, domain.BookingStatusConfirmed,
	); err != nil {
		// The owner cancelled between our read and the confirm. Undo the
		// acceptance so the state stays consistent.
		s.releaseCapacity(ctx, current.ProviderID, day, log)
		s.expireAccepted(ctx, current.ID, log)
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during acceptance", domain.ErrConflict)
		}
		return nil, &ServiceError{Operation: "respond_to_offer", Message: "failed to confirm booking", Err: err}
	}

	booking.ProviderID = current.ProviderID
	booking.Status = domain.BookingStatusConfirmed
	booking.UpdatedAt = s.timeFunc().UTC()

	s.closeSiblingOffers(ctx, booking.ID, current.ID, log)

	current.Status = domain.OfferStatusAccepted
	current.UpdatedAt = s.timeFunc().UTC()

	s.emit(ctx, events.TypeBookingConfirmed, booking.ID,
		map[string]string{"provider_id": current.ProviderID.String()})
	log.Info("offer accepted",
		slog.String("offer_id", current.ID.String()),
		slog.String("booking_id", booking.ID.String()),
		slog.String("provider_id", current.ProviderID.String()))
	return &OfferResolution{Offer: current, Booking: booking}, nil
}

// closeSiblingOffers expires the remaining open offers once a booking is
// assigned. Losing providers see the offer disappear from their inbox.
func (s *dispatchServiceImpl) closeSiblingOffers(
	ctx context.Context,
	bookingID, acceptedOfferID uuid.UUID,
	log *slog.Logger,
) {
	siblings, err := s.offers.ListByBooking(ctx, bookingID)
	if err != nil {
		log.Error("failed to list sibling offers",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()))
		return
	}
	for _, sibling := range siblings {
		if sibling.ID == acceptedOfferID || sibling.Status != domain.OfferStatusOpen {
			continue
		}
		s.expireOffer(ctx, sibling.ID, log)
	}
}

func (s *dispatchServiceImpl) expireOffer(ctx context.Context, offerID uuid.UUID, log *slog.Logger) {
	err := s.offers.UpdateStatus(ctx, offerID, domain.OfferStatusOpen, domain.OfferStatusExpired)
	if err != nil && !errors.Is(err, store.ErrUpdateConflict) {
		log.Error("failed to expire offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offerID.String()))
	}
}

func (s *dispatchServiceImpl) expireAccepted(ctx context.Context, offerID uuid.UUID, log *slog.Logger) {
	err := s.offers.UpdateStatus(ctx, offerID, domain.OfferStatusAccepted, domain.OfferStatusExpired)
	if err != nil {
		log.Error("failed to roll back accepted offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offerID.String()))
	}
}

func (s *dispatchServiceImpl) releaseCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
	log *slog.Logger,
) {
	if err := s.providers.ReleaseCapacity(ctx, providerID, day); err != nil {
		log.Error("failed to release reserved capacity",
			slog.String("error", err.Error()),
			slog.String("provider_id", providerID.String()))
	}
}

func (s *dispatchServiceImpl) emit(ctx context.Context, eventType string, bookingID uuid.UUID, payload interface{}) {
	event, err := events.NewBookingEvent(eventType, bookingID, payload)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
	}
}
