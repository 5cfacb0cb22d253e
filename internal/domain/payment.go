package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Payment-specific validation errors
var (
	// ErrPaymentIDEmpty is returned when a payment record ID is empty or nil.
	ErrPaymentIDEmpty = errors.New("payment ID cannot be empty")

	// ErrPaymentBookingIDEmpty is returned when a payment's booking ID is empty or nil.
	ErrPaymentBookingIDEmpty = errors.New("payment booking ID cannot be empty")

	// ErrPaymentAmountInvalid is returned when a payment amount is zero or negative.
	ErrPaymentAmountInvalid = errors.New("payment amount must be positive")

	// ErrPaymentProofMissing is returned when a manual payment record lacks
	// a proof-of-transfer reference.
	ErrPaymentProofMissing = errors.New("manual payment requires a proof reference")

	// ErrPaymentTransactionMissing is returned when a gateway payment record
	// lacks the gateway transaction ID.
	ErrPaymentTransactionMissing = errors.New("gateway payment requires a transaction ID")

	// ErrAmountMismatch is returned when a submitted payment amount does not
	// equal the booking price.
	ErrAmountMismatch = errors.New("payment amount does not match booking price")
)

// PaymentMethod identifies how a payment reached the business.
type PaymentMethod string

const (
	PaymentMethodManual  PaymentMethod = "manual_transfer"
	PaymentMethodGateway PaymentMethod = "gateway"
)

// ReviewStatus represents the manual-review state of a payment record.
// Gateway-confirmed records are created approved.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// PaymentRecord is one payment attempt against a booking. Rejected records
// are kept for audit; a re-submission creates a new record rather than
// mutating the rejected one.
type PaymentRecord struct {
	ID            uuid.UUID     `json:"id"`
	BookingID     uuid.UUID     `json:"booking_id"`
	Amount        int64         `json:"amount"`
	Method        PaymentMethod `json:"method"`
	ProofURL      string        `json:"proof_url,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	ReviewStatus  ReviewStatus  `json:"review_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewManualPaymentRecord creates a pending-review record for a manual
// proof-of-transfer submission.
func NewManualPaymentRecord(bookingID uuid.UUID, amount int64, proofURL string) (*PaymentRecord, error) {
	now := time.Now().UTC()
	record := &PaymentRecord{
		ID:           uuid.New(),
		BookingID:    bookingID,
		Amount:       amount,
		Method:       PaymentMethodManual,
		ProofURL:     proofURL,
		ReviewStatus: ReviewStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// NewGatewayPaymentRecord creates an already-approved record for a payment
// confirmed by the external gateway collaborator.
func NewGatewayPaymentRecord(bookingID uuid.UUID, amount int64, transactionID string) (*PaymentRecord, error) {
	now := time.Now().UTC()
	record := &PaymentRecord{
		ID:            uuid.New(),
		BookingID:     bookingID,
		Amount:        amount,
		Method:        PaymentMethodGateway,
		TransactionID: transactionID,
		ReviewStatus:  ReviewStatusApproved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the PaymentRecord has valid data.
func (p *PaymentRecord) Validate() error {
	if p.ID == uuid.Nil {
		return ErrPaymentIDEmpty
	}
	if p.BookingID == uuid.Nil {
		return ErrPaymentBookingIDEmpty
	}
	if p.Amount <= 0 {
		return ErrPaymentAmountInvalid
	}
	switch p.Method {
	case PaymentMethodManual:
		if p.ProofURL == "" {
			return ErrPaymentProofMissing
		}
	case PaymentMethodGateway:
		if p.TransactionID == "" {
			return ErrPaymentTransactionMissing
		}
	}
	return nil
}
