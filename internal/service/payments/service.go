// Package payments reconciles booking payments. Manual bank transfers are
// submitted as proof references and reviewed by an operator; gateway
// payments arrive pre-confirmed. Either path ends with the booking marked
// paid exactly once, which is what gates the trust handshake.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// PaymentsService records and reconciles payments against bookings.
type PaymentsService interface {
	// SubmitManualProof records a proof-of-transfer for a confirmed
	// booking and puts its payment under review. The amount must equal
	// the booking price exactly.
	//
	// Returns:
	//   - (*domain.PaymentRecord, nil): The pending-review record
	//   - (nil, ErrBookingNotFound): If the booking does not exist
	//   - (nil, domain.ErrUnauthorized): If the actor is not the owner
	//   - (nil, domain.ErrPreconditionFailed): If the booking is not
	//     confirmed
	//   - (nil, domain.ErrAmountMismatch): If the amount is wrong
	//   - (nil, ErrReviewPending): If a submission is already under review
	//   - (nil, ErrAlreadyPaid): If the booking is already paid
	SubmitManualProof(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, proofURL string) (*domain.PaymentRecord, error)

	// ReviewManualProof resolves a pending manual submission. Approval
	// marks the booking paid; rejection returns it to unpaid so the owner
	// can submit again. The booking is only touched while its payment is
	// still pending review; reviewing a superseded record resolves the
	// record alone. Role enforcement happens at the API boundary.
	//
	// Returns:
	//   - (*domain.PaymentRecord, nil): The reviewed record
	//   - (nil, ErrPaymentNotFound): If the record does not exist
	//   - (nil, domain.ErrConflict): If the record was already reviewed
	ReviewManualProof(ctx context.Context, recordID uuid.UUID, approve bool) (*domain.PaymentRecord, error)

	// ConfirmGatewayPayment records a gateway-confirmed payment and marks
	// the booking paid in one step. The gateway collaborator has already
	// settled the charge; this is bookkeeping plus the amount check. A
	// manual submission sitting in review blocks this path too, so the
	// booking can never be marked paid twice.
	//
	// Returns the same errors as SubmitManualProof.
	ConfirmGatewayPayment(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, transactionID string) (*domain.PaymentRecord, error)

	// ListPayments retrieves a booking's payment history, newest first,
	// for one of the booking's parties.
	ListPayments(ctx context.Context, actorID, bookingID uuid.UUID) ([]*domain.PaymentRecord, error)
}

// Common error types for PaymentsService
var (
	// ErrBookingNotFound indicates that the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPaymentNotFound indicates that the payment record does not exist.
	ErrPaymentNotFound = errors.New("payment record not found")

	// ErrAlreadyPaid indicates the booking has already been paid.
	ErrAlreadyPaid = errors.New("booking is already paid")

	// ErrReviewPending indicates a manual submission is already awaiting
	// review for the booking.
	ErrReviewPending = errors.New("a payment submission is already under review")
)

// ServiceError wraps errors from the payments service with additional
// context so consumers can differentiate failures using errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_manual_proof")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
