package handshake

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/keymutex"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ HandshakeService = (*handshakeServiceImpl)(nil)

// handshakeServiceImpl implements the HandshakeService interface.
type handshakeServiceImpl struct {
	bookings store.BookingStore
	emitter  events.EventEmitter
	locks    *keymutex.KeyedMutex
	cfg      config.HandshakeConfig
	logger   *slog.Logger
}

// NewHandshakeService creates a new HandshakeService implementation.
func NewHandshakeService(
	bookings store.BookingStore,
	emitter events.EventEmitter,
	cfg config.HandshakeConfig,
	log *slog.Logger,
) HandshakeService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &handshakeServiceImpl{
		bookings: bookings,
		emitter:  emitter,
		locks:    keymutex.New(),
		cfg:      cfg,
		logger:   log.With(slog.String("component", "handshake_service")),
	}
}

// GeneratePIN implements HandshakeService.GeneratePIN.
func (s *handshakeServiceImpl) GeneratePIN(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.locks.Lock(bookingID)
	defer s.locks.Unlock(bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.OwnerID != ownerID {
		return "", domain.ErrUnauthorized
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return "", fmt.Errorf("%w: booking is %s, not confirmed",
			domain.ErrPreconditionFailed, booking.Status)
	}
	if booking.Payment != domain.PaymentStatusPaid {
		return "", fmt.Errorf("%w: booking is not paid", domain.ErrPreconditionFailed)
	}

	// Idempotent until consumed: re-requesting returns the outstanding PIN
	// so a flaky client cannot invalidate the one already shown.
	if booking.VerificationPIN != "" {
		return booking.VerificationPIN, nil
	}

	pin, err := generatePIN(s.cfg.PINLength)
	if err != nil {
		return "", &ServiceError{Operation: "generate_pin", Message: "failed to generate PIN", Err: err}
	}

	// Guarded by the confirmed status: a cancellation landing after the
	// read above turns this into a conflict instead of a lost update.
	if err := s.bookings.SetPINState(ctx, bookingID, domain.BookingStatusConfirmed, pin, 0); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return "", fmt.Errorf("%w: booking state changed during PIN issue", domain.ErrConflict)
		}
		return "", &ServiceError{Operation: "generate_pin", Message: "failed to save PIN", Err: err}
	}

	log.Info("verification PIN issued", slog.String("booking_id", bookingID.String()))
	return pin, nil
}

// VerifyPIN implements HandshakeService.VerifyPIN.
func (s *handshakeServiceImpl) VerifyPIN(
	ctx context.Context,
	providerID, bookingID uuid.UUID,
	pin string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Serialize per booking so concurrent guesses cannot share one attempt
	// slot or double-start the service.
	s.locks.Lock(bookingID)
	defer s.locks.Unlock(bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.ProviderID != providerID {
		return domain.ErrUnauthorized
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return fmt.Errorf("%w: booking is %s, not confirmed",
			domain.ErrPreconditionFailed, booking.Status)
	}
	if booking.VerificationPIN == "" {
		return ErrPINNotIssued
	}
	if booking.PINAttempts >= s.cfg.MaxAttempts {
		return ErrHandshakeLocked
	}

	if subtle.ConstantTimeCompare([]byte(booking.VerificationPIN), []byte(pin)) != 1 {
		attempts := booking.PINAttempts + 1
		remainingPIN := booking.VerificationPIN
		locked := attempts >= s.cfg.MaxAttempts
		if locked {
			// Invalidate the PIN; the owner must issue a fresh one.
			remainingPIN = ""
			attempts = 0
		}
		// The status guard keeps the attempt write off a booking that left
		// confirmed while we compared.
		if err := s.bookings.SetPINState(ctx, bookingID, domain.BookingStatusConfirmed, remainingPIN, attempts); err != nil {
			if errors.Is(err, store.ErrUpdateConflict) {
				return fmt.Errorf("%w: booking state changed during verification", domain.ErrConflict)
			}
			return &ServiceError{Operation: "verify_pin", Message: "failed to record attempt", Err: err}
		}
		booking.PINAttempts = attempts
		if locked {
			log.Warn("handshake locked",
				slog.String("booking_id", bookingID.String()),
				slog.String("provider_id", providerID.String()))
			return ErrHandshakeLocked
		}
		log.Warn("PIN mismatch",
			slog.String("booking_id", bookingID.String()),
			slog.Int("attempts", booking.PINAttempts))
		return ErrPINMismatch
	}

	if err := s.bookings.UpdateStatus(
		ctx, bookingID, domain.BookingStatusConfirmed, domain.BookingStatusInProgress,
	); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return fmt.Errorf("%w: booking state changed during verification", domain.ErrConflict)
		}
		return &ServiceError{Operation: "verify_pin", Message: "failed to start service", Err: err}
	}

	if err := s.bookings.SetPINState(ctx, bookingID, domain.BookingStatusInProgress, "", 0); err != nil {
		log.Error("failed to clear consumed PIN",
			slog.String("error", err.Error()),
			slog.String("booking_id", bookingID.String()))
	}

	s.emit(ctx, events.TypeBookingStarted, bookingID)
	log.Info("handshake verified, service started",
		slog.String("booking_id", bookingID.String()),
		slog.String("provider_id", providerID.String()))
	return nil
}

func (s *handshakeServiceImpl) getBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "get_booking", Message: "failed to load booking", Err: err}
	}
	return booking, nil
}

func (s *handshakeServiceImpl) emit(ctx context.Context, eventType string, bookingID uuid.UUID) {
	event, err := events.NewBookingEvent(eventType, bookingID, nil)
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

// generatePIN returns a uniformly random numeric string of the given length.
// Leading zeros are allowed; every digit is drawn independently.
func generatePIN(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
