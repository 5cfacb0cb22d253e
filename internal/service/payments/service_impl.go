package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/keymutex"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// Verify interface compliance at compile time
var _ PaymentsService = (*paymentsServiceImpl)(nil)

// paymentsServiceImpl implements the PaymentsService interface.
type paymentsServiceImpl struct {
	bookings store.BookingStore
	payments store.PaymentStore
	emitter  events.EventEmitter
	locks    *keymutex.KeyedMutex
	logger   *slog.Logger
}

// NewPaymentsService creates a new PaymentsService implementation.
func NewPaymentsService(
	bookings store.BookingStore,
	payments store.PaymentStore,
	emitter events.EventEmitter,
	log *slog.Logger,
) PaymentsService {
	if bookings == nil {
		panic("bookings cannot be nil")
	}
	if payments == nil {
		panic("payments cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &paymentsServiceImpl{
		bookings: bookings,
		payments: payments,
		emitter:  emitter,
		locks:    keymutex.New(),
		logger:   log.With(slog.String("component", "payments_service")),
	}
}

// SubmitManualProof implements PaymentsService.SubmitManualProof.
func (s *paymentsServiceImpl) SubmitManualProof(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
	amount int64,
	proofURL string,
) (*domain.PaymentRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.locks.Lock(bookingID)
	defer s.locks.Unlock(bookingID)

	if _, err := s.eligibleForPayment(ctx, ownerID, bookingID, amount); err != nil {
		return nil, err
	}

	record, err := domain.NewManualPaymentRecord(bookingID, amount, proofURL)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, &ServiceError{Operation: "submit_manual_proof", Message: "failed to save record", Err: err}
	}

	// Conditional on both status and payment state: a cancellation landing
	// after the eligibility read surfaces as a conflict instead of being
	// silently overwritten.
	if err := s.bookings.UpdatePayment(
		ctx, bookingID,
		domain.BookingStatusConfirmed,
		domain.PaymentStatusUnpaid, domain.PaymentStatusPendingReview,
	); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during submission", domain.ErrConflict)
		}
		return nil, &ServiceError{Operation: "submit_manual_proof", Message: "failed to update booking", Err: err}
	}

	log.Info("manual payment proof submitted",
		slog.String("booking_id", bookingID.String()),
		slog.String("record_id", record.ID.String()))
	return record, nil
}

// ReviewManualProof implements PaymentsService.ReviewManualProof.
func (s *paymentsServiceImpl) ReviewManualProof(
	ctx context.Context,
	recordID uuid.UUID,
	approve bool,
) (*domain.PaymentRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := s.payments.GetByID(ctx, recordID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, &ServiceError{Operation: "review_manual_proof", Message: "failed to load record", Err: err}
	}

	s.locks.Lock(record.BookingID)
	defer s.locks.Unlock(record.BookingID)

	target := domain.ReviewStatusApproved
	if !approve {
		target = domain.ReviewStatusRejected
	}

	// The CAS guarantees a record is reviewed once even if two operators
	// act on it at the same time.
	if err := s.payments.UpdateReviewStatus(ctx, recordID, domain.ReviewStatusPending, target); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: payment already reviewed", domain.ErrConflict)
		}
		if store.IsNotFoundError(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, &ServiceError{Operation: "review_manual_proof", Message: "failed to update record", Err: err}
	}

	// Rejection reopens the payment; the owner submits a new proof. The
	// booking write is conditional on its payment still sitting in
	// pending_review, so reviewing a record that was superseded (a gateway
	// confirmation, a cancellation) never moves a paid booking backwards
	// or mints a second paid transition.
	bookingPayment := domain.PaymentStatusPaid
	if !approve {
		bookingPayment = domain.PaymentStatusUnpaid
	}
	err = s.bookings.UpdatePayment(
		ctx, record.BookingID,
		domain.BookingStatusConfirmed,
		domain.PaymentStatusPendingReview, bookingPayment,
	)
	if err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			log.Warn("booking payment state moved on, review recorded without booking change",
				slog.String("record_id", recordID.String()),
				slog.String("booking_id", record.BookingID.String()))
		} else {
			return nil, &ServiceError{Operation: "review_manual_proof", Message: "failed to update booking", Err: err}
		}
	}

	record.ReviewStatus = target
	record.UpdatedAt = time.Now().UTC()

	s.emit(ctx, record.BookingID, map[string]interface{}{
		"record_id": record.ID.String(),
		"approved":  approve,
	})
	log.Info("manual payment reviewed",
		slog.String("record_id", recordID.String()),
		slog.String("booking_id", record.BookingID.String()),
		slog.Bool("approved", approve))
	return record, nil
}

// ConfirmGatewayPayment implements PaymentsService.ConfirmGatewayPayment.
func (s *paymentsServiceImpl) ConfirmGatewayPayment(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
	amount int64,
	transactionID string,
) (*domain.PaymentRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.locks.Lock(bookingID)
	defer s.locks.Unlock(bookingID)

	if _, err := s.eligibleForPayment(ctx, ownerID, bookingID, amount); err != nil {
		return nil, err
	}

	record, err := domain.NewGatewayPaymentRecord(bookingID, amount, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, &ServiceError{Operation: "confirm_gateway_payment", Message: "failed to save record", Err: err}
	}

	if err := s.bookings.UpdatePayment(
		ctx, bookingID,
		domain.BookingStatusConfirmed,
		domain.PaymentStatusUnpaid, domain.PaymentStatusPaid,
	); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil, fmt.Errorf("%w: booking state changed during confirmation", domain.ErrConflict)
		}
		return nil, &ServiceError{Operation: "confirm_gateway_payment", Message: "failed to update booking", Err: err}
	}

	s.emit(ctx, bookingID, map[string]interface{}{
		"record_id": record.ID.String(),
		"approved":  true,
	})
	log.Info("gateway payment confirmed",
		slog.String("booking_id", bookingID.String()),
		slog.String("record_id", record.ID.String()))
	return record, nil
}

// ListPayments implements PaymentsService.ListPayments.
func (s *paymentsServiceImpl) ListPayments(
	ctx context.Context,
	actorID, bookingID uuid.UUID,
) ([]*domain.PaymentRecord, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, &ServiceError{Operation: "list_payments", Message: "failed to load booking", Err: err}
	}
	if booking.OwnerID != actorID && booking.ProviderID != actorID {
		return nil, domain.ErrUnauthorized
	}

	records, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, &ServiceError{Operation: "list_payments", Message: "failed to list records", Err: err}
	}
	return records, nil
}

// eligibleForPayment loads the booking and applies the checks shared by both
// payment paths: ownership, confirmed status, exact amount, not yet paid and
// no submission under review. Blocking the gateway path during a pending
// review keeps the paid transition unique; the stale proof must be reviewed
// (or rejected) first.
func (s *paymentsServiceImpl) eligibleForPayment(
	ctx context.Context,
	ownerID, bookingID uuid.UUID,
	amount int64,
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
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking is %s, not confirmed",
			domain.ErrPreconditionFailed, booking.Status)
	}
	if booking.Payment == domain.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if booking.Payment == domain.PaymentStatusPendingReview {
		return nil, ErrReviewPending
	}
	if amount != booking.Price {
		return nil, fmt.Errorf("%w: got %d, booking price is %d",
			domain.ErrAmountMismatch, amount, booking.Price)
	}
	return booking, nil
}

func (s *paymentsServiceImpl) emit(ctx context.Context, bookingID uuid.UUID, payload interface{}) {
	event, err := events.NewBookingEvent(events.TypePaymentReviewed, bookingID, payload)
	if err != nil {
		s.logger.Error("failed to build event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit event", slog.String("error", err.Error()))
	}
}
