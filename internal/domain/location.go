package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Location-specific validation errors
var (
	// ErrPingBookingIDEmpty is returned when a ping's booking ID is empty or nil.
	ErrPingBookingIDEmpty = errors.New("ping booking ID cannot be empty")

	// ErrCoordinatesInvalid is returned when latitude or longitude are out of range.
	ErrCoordinatesInvalid = errors.New("invalid coordinates")
)

// LocationPing is one provider position report during an active booking.
// Pings are retained as an append-only log; owners are served only the most
// recent one.
type LocationPing struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Speed      float64   `json:"speed,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewLocationPing creates a ping stamped with the receipt time. Ordering
// within a booking uses ReceivedAt, so a stale ping can be recognized and
// kept out of the latest-position cache.
func NewLocationPing(bookingID uuid.UUID, lat, lng, accuracy, speed float64) (*LocationPing, error) {
	ping := &LocationPing{
		ID:         uuid.New(),
		BookingID:  bookingID,
		Latitude:   lat,
		Longitude:  lng,
		Accuracy:   accuracy,
		Speed:      speed,
		ReceivedAt: time.Now().UTC(),
	}

	if err := ping.Validate(); err != nil {
		return nil, err
	}

	return ping, nil
}

// Validate checks if the LocationPing has valid data.
func (p *LocationPing) Validate() error {
	if p.BookingID == uuid.Nil {
		return ErrPingBookingIDEmpty
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return ErrCoordinatesInvalid
	}
	return nil
}
