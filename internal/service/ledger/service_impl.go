package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ LedgerService = (*ledgerServiceImpl)(nil)

// ledgerServiceImpl implements the LedgerService interface.
type ledgerServiceImpl struct {
	bookings  store.BookingStore
	offers    store.OfferStore
	providers store.ProviderStore
	pets      store.PetStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewLedgerService creates a new LedgerService implementation.
func NewLedgerService(
	bookings store.BookingStore,
	offers store.OfferStore,
	providers store.ProviderStore,
	pets store.PetStore,
	emitter events.EventEmitter,
	log *slog.Logger,
) LedgerService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if offers == nil {
		panic("offers cannot be nil")
	}
	if providers == nil {
		panic("providers cannot be nil")
	}
	if pets == nil {
		panic("pets cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ledgerServiceImpl{
		bookings:  bookings,
		offers:    offers,
		providers: providers,
		pets:      pets,
		emitter:   emitter,
		logger:    log.With(slog.String("component", "ledger_service")),
	}
}

// CreateBooking implements LedgerService.CreateBooking.
func (s *ledgerServiceImpl) CreateBooking(
	ctx context.Context,
	ownerID uuid.UUID,
	req CreateBookingRequest,
) (*domain.Booking, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	owned, err := s.pets.BelongsToOwner(ctx, req.PetID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		log.Error("failed to check pet ownership",
			slog.String("error", err.Error()),
			slog.String("pet_id", req.PetID.String()))
		return nil, fmt.Errorf("failed to check pet ownership: %w", err)
	}
	if !owned {
		log.Warn("booking requested for pet of another owner",
			slog.String("owner_id", ownerID.String()),
			slog.String("pet_id", req.PetID.String()))
		return nil, domain.ErrPetNotOwned
	}

	booking, err := domain.NewBooking(ownerID, req.PetID, req.ServiceType, req.ScheduledAt, req.Price)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		log.Error("failed to create booking",
			slog.String("error", err.Error()),
			slog.String("booking_id", booking.ID.String()))
		return nil, &ServiceError{Operation: "create_booking", Message: "failed to save booking", Err: err}
	}

	s.emit(ctx, events.TypeBookingCreated, booking.ID, nil)
	log.Info("booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("service_type", string(booking.ServiceType)))
	return booking, nil
}

// GetBooking implements LedgerService.GetBooking.
func (s *ledgerServiceImpl) GetBooking(
	ctx context.Context,
	actorID, bookingID uuid.UUID,
) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID && booking.ProviderID != actorID {
		return nil, domain.ErrUnauthorized
	}
	return booking, nil
}

// ListBookings implements LedgerService.ListBookings.
func (s *ledgerServiceImpl) ListBookings(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &ServiceError{Operation: "list_bookings", Message: "failed to list bookings", Err: err}
	}
	return bookings, nil
}

// CancelBooking implements LedgerService.CancelBooking.
func (s *ledgerServiceImpl) CancelBooking(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
) (*domain.Booking, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	if !booking.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s",
			domain.ErrInvalidTransition, booking.Status, domain.BookingStatusCancelled)
	}

	// The conditional update guards against a provider accepting or a PIN
	// verification landing between the read and the cancel.
	if err := s.bookings.UpdateStatus(ctx, bookingID, booking.Status, domain.BookingStatusCancelled); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during cancellation", domain.ErrConflict)
		}
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "cancel_booking", Message: "failed to cancel booking", Err: err}
	}

	s.closeOpenOffers(ctx, bookingID, log)

	if booking.Status == domain.BookingStatusConfirmed && booking.ProviderID != uuid.Nil {
		if err := s.providers.ReleaseCapacity(ctx, booking.ProviderID, booking.ServiceDay()); err != nil {
			// Cancellation already committed; log and move on rather than
			// failing the request over the capacity counter.
			log.Error("failed to release provider capacity on cancel",
				slog.String("error", err.Error()),
				slog.String("booking_id", bookingID.String()),
				slog.String("provider_id", booking.ProviderID.String()))
		}
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = time.Now().UTC()

	s.emit(ctx, events.TypeBookingCancelled, bookingID, nil)
	log.Info("booking cancelled", slog.String("booking_id", bookingID.String()))
	return booking, nil
}

// CompleteBooking implements LedgerService.CompleteBooking.
func (s *ledgerServiceImpl) CompleteBooking(
	ctx context.Context,
	providerID, bookingID uuid.UUID,
) (*domain.Booking, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != providerID {
		return nil, domain.ErrUnauthorized
	}
	if !booking.CanTransitionTo(domain.BookingStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s",
			domain.ErrInvalidTransition, booking.Status, domain.BookingStatusCompleted)
	}

	if err := s.bookings.UpdateStatus(
		ctx, bookingID, domain.BookingStatusInProgress, domain.BookingStatusCompleted,
	); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during completion", domain.ErrConflict)
		}
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "complete_booking", Message: "failed to complete booking", Err: err}
	}

	// Record the completion time. The status CAS above already decided the
	// winner, and the timestamp write touches nothing else, so it cannot
	// race another state change.
	now := time.Now().UTC()
	booking.Status = domain.BookingStatusCompleted
	booking.CompletedAt = &now
	booking.UpdatedAt = now
	if err := s.bookings.SetCompletedAt(ctx, bookingID, now); err != nil {
		log.Error("failed to record completion time",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()))
	}

	if err := s.providers.ReleaseCapacity(ctx, providerID, booking.ServiceDay()); err != nil {
		log.Error("failed to release provider capacity on completion",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()),
			slog.String("provider_id", providerID.String()))
	}

	s.emit(ctx, events.TypeBookingCompleted, bookingID, nil)
	log.Info("booking completed", slog.String("booking_id", bookingID.String()))
	return booking, nil
}

func (s *ledgerServiceImpl) getBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "get_booking", Message: "failed to load booking", Err: err}
	}
	return booking, nil
}

// closeOpenOffers expires any open offers left for a booking that just left
// the pending state. Conflicts are ignored; an offer resolved concurrently
// is already closed.
func (s *ledgerServiceImpl) closeOpenOffers(ctx context.Context, bookingID uuid.UUID, log *slog.Logger) {
	offers, err := s.offers.ListByBooking(ctx, bookingID)
	if err != nil {
		log.Error("failed to list offers for cancelled booking",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()))
		return
	}
	for _, offer := range offers {
		if offer.Status != domain.OfferStatusOpen {
			continue
		}
		err := s.offers.UpdateStatus(ctx, offer.ID, domain.OfferStatusOpen, domain.OfferStatusExpired)
		if err != nil && !errors.Is(err, store.ErrUpdateConflict) {
			log.Error("failed to expire offer for cancelled booking",
				slog.String("error", err.Error()),
				slog.String("offer_id", offer.ID.String()))
		}
	}
}

func (s *ledgerServiceImpl) emit(ctx context.Context, eventType string, bookingID uuid.UUID, payload interface{}) {
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
