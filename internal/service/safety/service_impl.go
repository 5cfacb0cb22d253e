package safety

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/service/relay"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ SafetyService = (*safetyServiceImpl)(nil)

// safetyServiceImpl implements the SafetyService interface.
type safetyServiceImpl struct {
	bookings store.BookingStore
	safety   store.SafetyStore
	relay    relay.RelayService
	notifier Notifier
	emitter  events.EventEmitter
	cfg      config.SafetyConfig
	logger   *slog.Logger
}

// NewSafetyService creates a new SafetyService implementation.
func NewSafetyService(
	bookings store.BookingStore,
	safety store.SafetyStore,
	relaySvc relay.RelayService,
	notifier Notifier,
	emitter events.EventEmitter,
	cfg config.SafetyConfig,
	log *slog.Logger,
) SafetyService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if safety == nil {
		panic("safety cannot be nil")
	}
	if relaySvc == nil {
		panic("relaySvc cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &safetyServiceImpl{
		bookings: bookings,
		safety:   safety,
		relay:    relaySvc,
		notifier: notifier,
		emitter:  emitter,
		cfg:      cfg,
		logger:   log.With(slog.String("component", "safety_service")),
	}
}

// AddContact implements SafetyService.AddContact.
func (s *safetyServiceImpl) AddContact(
	ctx context.Context,
	ownerID uuid.UUID,
	name, phone string,
) (*domain.EmergencyContact, error) {
	contact, err := domain.NewEmergencyContact(ownerID, name, phone)
	if err != nil {
		return nil, err
	}
	if err := s.safety.CreateContact(ctx, contact); err != nil {
		return nil, &ServiceError{Operation: "add_contact", Message: "failed to save contact", Err: err}
	}
	return contact, nil
}

// ListContacts implements SafetyService.ListContacts.
func (s *safetyServiceImpl) ListContacts(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.EmergencyContact, error) {
	contacts, err := s.safety.ListContactsByOwner(ctx, ownerID)
	if err != nil {
		return nil, &ServiceError{Operation: "list_contacts", Message: "failed to list contacts", Err: err}
	}
	return contacts, nil
}

// RemoveContact implements SafetyService.RemoveContact.
func (s *safetyServiceImpl) RemoveContact(ctx context.Context, ownerID, contactID uuid.UUID) error {
	contact, err := s.safety.GetContact(ctx, contactID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrContactNotFound
		}
		return &ServiceError{Operation: "remove_contact", Message: "failed to load contact", Err: err}
	}
	if contact.OwnerID != ownerID {
		return domain.ErrUnauthorized
	}
	if err := s.safety.DeleteContact(ctx, contactID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrContactNotFound
		}
		return &ServiceError{Operation: "remove_contact", Message: "failed to delete contact", Err: err}
	}
	return nil
}

// ShareTrip implements SafetyService.ShareTrip.
func (s *safetyServiceImpl) ShareTrip(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
) (*domain.SafetyShareToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.activeBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.ShareTokenTTLHours) * time.Hour
	token, err := domain.NewSafetyShareToken(booking.ID, ownerID, ttl)
	if err != nil {
		return nil, &ServiceError{Operation: "share_trip", Message: "failed to mint token", Err: err}
	}
	if err := s.safety.CreateShareToken(ctx, token); err != nil {
		return nil, &ServiceError{Operation: "share_trip", Message: "failed to save token", Err: err}
	}

	log.Info("trip share token minted",
		slog.String("booking_id", bookingID.String()),
		slog.Time("expires_at", token.ExpiresAt))
	return token, nil
}

// ResolveShareToken implements SafetyService.ResolveShareToken.
func (s *safetyServiceImpl) ResolveShareToken(
	ctx context.Context,
	token string,
) (*TripShareView, error) {
	share, err := s.safety.GetShareToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrShareTokenNotFound
		}
		return nil, &ServiceError{Operation: "resolve_share_token", Message: "failed to load token", Err: err}
	}
	if share.IsExpired(time.Now()) {
		return nil, domain.ErrShareTokenExpired
	}

	booking, err := s.bookings.GetByID(ctx, share.BookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "resolve_share_token", Message: "failed to load booking", Err: err}
	}

	view := &TripShareView{
		BookingID: booking.ID,
		Status:    booking.Status,
		ExpiresAt: share.ExpiresAt,
	}

	ping, err := s.relay.CurrentForBooking(ctx, booking.ID)
	if err != nil {
		// No position yet is a normal state for a freshly shared trip.
		if !errors.Is(err, relay.ErrNoLocation) {
			return nil, &ServiceError{Operation: "resolve_share_token", Message: "failed to load position", Err: err}
		}
	} else {
		view.Location = ping
	}
	return view, nil
}

// TriggerSOS implements SafetyService.TriggerSOS.
func (s *safetyServiceImpl) TriggerSOS(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
	lat, lng float64,
) (*SOSResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	booking, err := s.activeBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	event, err := domain.NewSOSEvent(booking.ID, ownerID, lat, lng)
	if err != nil {
		return nil, err
	}
	if err := s.safety.CreateSOSEvent(ctx, event); err != nil {
		return nil, &ServiceError{Operation: "trigger_sos", Message: "failed to record event", Err: err}
	}

	contacts, err := s.safety.ListContactsByOwner(ctx, ownerID)
	if err != nil {
		// The event is recorded; degrade to an empty fan-out rather than
		// failing the escalation.
		log.Error("failed to list contacts for SOS fan-out",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()))
		contacts = nil
	}

	message := fmt.Sprintf(
		"SOS: emergency during pet-care booking at %.5f,%.5f. Call %s.",
		lat, lng, s.cfg.EmergencyNumber,
	)
	results := s.fanOut(ctx, contacts, message)

	s.emitSOS(ctx, event)
	log.Warn("SOS triggered",
		slog.String("booking_id", bookingID.String()),
		slog.Int("contacts_notified", len(results)))

	return &SOSResult{
		Event:           event,
		EmergencyNumber: s.cfg.EmergencyNumber,
		Notifications:   results,
	}, nil
}

// fanOut notifies every contact in parallel and collects per-target
// outcomes. Delivery failures are reported, never fatal.
func (s *safetyServiceImpl) fanOut(
	ctx context.Context,
	contacts []*domain.EmergencyContact,
	message string,
) []NotificationResult {
	results := make([]NotificationResult, len(contacts))
	var wg sync.WaitGroup
	for i, contact := range contacts {
		wg.Add(1)
		go func(i int, contact *domain.EmergencyContact) {
			defer wg.Done()
			result := NotificationResult{
				ContactID: contact.ID,
				Name:      contact.Name,
				Phone:     contact.Phone,
				Delivered: true,
			}
			if err := s.notifier.Notify(ctx, contact.Phone, message); err != nil {
				result.Delivered = false
				result.Error = err.Error()
			}
			results[i] = result
		}(i, contact)
	}
	wg.Wait()
	return results
}

// activeBooking loads the booking and checks the shared safety
// preconditions: ownership and an active (confirmed or in-progress) state.
func (s *safetyServiceImpl) activeBooking(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "load_booking", Message: "failed to load booking", Err: err}
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	if !booking.IsActive() {
		return nil, fmt.Errorf("%w: booking is %s, not active",
			domain.ErrPreconditionFailed, booking.Status)
	}
	return booking, nil
}

func (s *safetyServiceImpl) emitSOS(ctx context.Context, event *domain.SOSEvent) {
	e, err := events.NewBookingEvent(events.TypeSOSTriggered, event.BookingID, event)
	if err != nil {
		s.logger.Error("failed to build event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, e); err != nil {
		s.logger.Error("failed to emit event", slog.String("error", err.Error()))
	}
}

// LogNotifier is the default Notifier: it records the outbound alert in the
// structured log. The real delivery channel is owned by the messaging
// collaborator and wired in at startup when available.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, phone, message string) error {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("sos notification",
		slog.String("phone", phone),
		slog.String("message", message))
	return nil
}
