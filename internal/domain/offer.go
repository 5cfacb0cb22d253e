package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Offer-specific validation errors
var (
	// ErrOfferIDEmpty is returned when an offer ID is empty or nil.
	ErrOfferIDEmpty = errors.New("offer ID cannot be empty")

	// ErrOfferBookingIDEmpty is returned when an offer's booking ID is empty or nil.
	ErrOfferBookingIDEmpty = errors.New("offer booking ID cannot be empty")

	// ErrOfferProviderIDEmpty is returned when an offer's provider ID is empty or nil.
	ErrOfferProviderIDEmpty = errors.New("offer provider ID cannot be empty")

	// ErrOfferTTLInvalid is returned when an offer's TTL is zero or negative.
	ErrOfferTTLInvalid = errors.New("offer TTL must be positive")
)

// OfferStatus represents the resolution state of an inbox offer.
type OfferStatus string

const (
	OfferStatusOpen     OfferStatus = "open"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// InboxOffer is a time-boxed proposal of a pending booking to one specific
// provider. At most one offer per (booking, provider) pair may be open at a
// time, and an open offer past its TTL can never be accepted.
type InboxOffer struct {
	ID         uuid.UUID   `json:"id"`
	BookingID  uuid.UUID   `json:"booking_id"`
	ProviderID uuid.UUID   `json:"provider_id"`
	TTLSeconds int         `json:"ttl_seconds"`
	Status     OfferStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewInboxOffer creates an open offer for the given booking and provider with
// the supplied TTL. Returns a validation error for malformed fields.
func NewInboxOffer(bookingID, providerID uuid.UUID, ttlSeconds int) (*InboxOffer, error) {
	now := time.Now().UTC()
	offer := &InboxOffer{
		ID:         uuid.New(),
		BookingID:  bookingID,
		ProviderID: providerID,
		TTLSeconds: ttlSeconds,
		Status:     OfferStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := offer.Validate(); err != nil {
		return nil, err
	}

	return offer, nil
}

// Validate checks if the InboxOffer has valid data.
func (o *InboxOffer) Validate() error {
	if o.ID == uuid.Nil {
		return ErrOfferIDEmpty
	}
	if o.BookingID == uuid.Nil {
		return ErrOfferBookingIDEmpty
	}
	if o.ProviderID == uuid.Nil {
		return ErrOfferProviderIDEmpty
	}
	if o.TTLSeconds <= 0 {
		return ErrOfferTTLInvalid
	}
	return nil
}

// ExpiresAt returns the instant the offer's TTL elapses.
func (o *InboxOffer) ExpiresAt() time.Time {
	return o.CreatedAt.Add(time.Duration(o.TTLSeconds) * time.Second)
}

// IsExpired reports whether the offer's TTL has elapsed at the given instant.
// The check is independent of the stored status so that an overdue offer is
// treated as expired even before the sweep has marked it.
func (o *InboxOffer) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt())
}

// RemainingSeconds returns the whole seconds left before expiry, clamped to
// zero. Inbox listings report this as expires_in_seconds.
func (o *InboxOffer) RemainingSeconds(now time.Time) int {
	remaining := int(o.ExpiresAt().Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
