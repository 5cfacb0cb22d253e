package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking-specific validation errors
var (
	// ErrBookingIDEmpty is returned when a booking ID is empty or nil.
	ErrBookingIDEmpty = errors.New("booking ID cannot be empty")

	// ErrBookingOwnerIDEmpty is returned when a booking's owner ID is empty or nil.
	ErrBookingOwnerIDEmpty = errors.New("booking owner ID cannot be empty")

	// ErrBookingPetIDEmpty is returned when a booking's pet ID is empty or nil.
	ErrBookingPetIDEmpty = errors.New("booking pet ID cannot be empty")

	// ErrBookingPriceInvalid is returned when a booking's price is zero or negative.
	ErrBookingPriceInvalid = errors.New("booking price must be positive")

	// ErrBookingServiceTypeInvalid is returned when a booking's service type
	// is not one of the known provider types.
	ErrBookingServiceTypeInvalid = errors.New("invalid booking service type")
)

// ServiceType identifies the kind of provider a booking requests.
type ServiceType string

const (
	ServiceTypeWalker  ServiceType = "walker"
	ServiceTypeDaycare ServiceType = "daycare"
	ServiceTypeVet     ServiceType = "vet"
)

// IsValid reports whether the service type is one of the known types.
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeWalker, ServiceTypeDaycare, ServiceTypeVet:
		return true
	}
	return false
}

// BookingStatus represents a booking's position in its lifecycle.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// statusRank orders the forward lifecycle. Cancelled is handled separately
// because it is reachable only from pending and confirmed.
var statusRank = map[BookingStatus]int{
	BookingStatusPending:    0,
	BookingStatusConfirmed:  1,
	BookingStatusInProgress: 2,
	BookingStatusCompleted:  3,
}

// PaymentStatus represents the reconciliation state of a booking's payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPendingReview PaymentStatus = "pending_review"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// Booking represents one pet-care service engagement between an owner and a
// provider. It is never deleted, only terminalized (completed or cancelled).
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	ProviderID  uuid.UUID     `json:"provider_id,omitempty"` // Nil until an offer is accepted
	PetID       uuid.UUID     `json:"pet_id"`
	ServiceType ServiceType   `json:"service_type"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Price       int64         `json:"price"`
	Status      BookingStatus `json:"status"`
	Payment     PaymentStatus `json:"payment_status"`

	// VerificationPIN is set once the booking is confirmed and paid, and
	// cleared on successful verification. It is never serialized; the PIN
	// is echoed to the owner only through the dedicated endpoint.
	VerificationPIN string `json:"-"`

	// PINAttempts counts failed verification attempts for lockout.
	PINAttempts int `json:"-"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBooking creates a pending Booking for the given owner, pet, service type,
// schedule and price. Returns ErrInvalidSchedule if the schedule is in the
// past, or a validation error for malformed fields.
func NewBooking(
	ownerID, petID uuid.UUID,
	serviceType ServiceType,
	scheduledAt time.Time,
	price int64,
) (*Booking, error) {
	now := time.Now().UTC()
	if scheduledAt.Before(now) {
		return nil, ErrInvalidSchedule
	}

	booking := &Booking{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		PetID:       petID,
		ServiceType: serviceType,
		ScheduledAt: scheduledAt.UTC(),
		Price:       price,
		Status:      BookingStatusPending,
		Payment:     PaymentStatusUnpaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := booking.Validate(); err != nil {
		return nil, err
	}

	return booking, nil
}

// Validate checks if the Booking has valid data.
// Returns an error if any field fails validation.
func (b *Booking) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBookingIDEmpty
	}
	if b.OwnerID == uuid.Nil {
		return ErrBookingOwnerIDEmpty
	}
	if b.PetID == uuid.Nil {
		return ErrBookingPetIDEmpty
	}
	if !b.ServiceType.IsValid() {
		return ErrBookingServiceTypeInvalid
	}
	if b.Price <= 0 {
		return ErrBookingPriceInvalid
	}
	return nil
}

// ServiceDay returns the service window the booking occupies, used as the
// capacity accounting key.
func (b *Booking) ServiceDay() string {
	return b.ScheduledAt.UTC().Format("2006-01-02")
}

// IsTerminal reports whether the booking has reached a terminal state.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// IsActive reports whether the booking is in a state where safety operations
// (SOS, trip sharing) apply.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusInProgress
}

// CanTransitionTo reports whether moving from the booking's current status to
// target respects the lifecycle: forward-only, one step at a time, with
// cancellation allowed only from pending and confirmed.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	if target == BookingStatusCancelled {
		return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
	}
	from, okFrom := statusRank[b.Status]
	to, okTo := statusRank[target]
	if !okFrom || !okTo {
		return false
	}
	return to == from+1
}

// TransitionTo advances the booking to target, enforcing the lifecycle
// ordering. Returns ErrInvalidTransition wrapped with both statuses on
// violation. It does not enforce the payment or PIN gates; those belong to
// the services that own them.
func (b *Booking) TransitionTo(target BookingStatus) error {
	if !b.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}
	b.Status = target
	now := time.Now().UTC()
	b.UpdatedAt = now
	if target == BookingStatusCompleted {
		b.CompletedAt = &now
	}
	return nil
}
