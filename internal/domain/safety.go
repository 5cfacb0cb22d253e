package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Safety-specific validation errors
var (
	// ErrContactNameEmpty is returned when an emergency contact has no name.
	ErrContactNameEmpty = errors.New("contact name cannot be empty")

	// ErrContactPhoneEmpty is returned when an emergency contact has no phone number.
	ErrContactPhoneEmpty = errors.New("contact phone cannot be empty")

	// ErrShareTokenExpired is returned when a trip-share token is past its expiry.
	ErrShareTokenExpired = errors.New("share token expired")
)

// shareTokenBytes is the entropy of a trip-share token (32 hex characters).
const shareTokenBytes = 16

// EmergencyContact is an owner-scoped contact for safety escalation.
// Contacts have no booking coupling.
type EmergencyContact struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEmergencyContact creates a contact for the given owner.
func NewEmergencyContact(ownerID uuid.UUID, name, phone string) (*EmergencyContact, error) {
	if name == "" {
		return nil, ErrContactNameEmpty
	}
	if phone == "" {
		return nil, ErrContactPhoneEmpty
	}
	return &EmergencyContact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SafetyShareToken is a time-limited, unguessable reference tied to one
// booking. Read access through it exposes only current location and booking
// status.
type SafetyShareToken struct {
	Token     string    `json:"token"`
	BookingID uuid.UUID `json:"booking_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSafetyShareToken mints a share token for the booking with the given
// lifetime. Token generation uses crypto/rand; failure to read entropy is
// returned rather than degraded.
func NewSafetyShareToken(bookingID, ownerID uuid.UUID, ttl time.Duration) (*SafetyShareToken, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating share token: %w", err)
	}
	now := time.Now().UTC()
	return &SafetyShareToken{
		Token:     hex.EncodeToString(b),
		BookingID: bookingID,
		OwnerID:   ownerID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *SafetyShareToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// SOSEvent captures an emergency escalation fired during an active booking.
type SOSEvent struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// NewSOSEvent creates an SOS event at the given position.
func NewSOSEvent(bookingID, ownerID uuid.UUID, lat, lng float64) (*SOSEvent, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrCoordinatesInvalid
	}
	return &SOSEvent{
		ID:          uuid.New(),
		BookingID:   bookingID,
		OwnerID:     ownerID,
		Latitude:    lat,
		Longitude:   lng,
		TriggeredAt: time.Now().UTC(),
	}, nil
}
