package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle event types.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingStarted   = "booking.started"
	TypeBookingCompleted = "booking.completed"
	TypeBookingCancelled = "booking.cancelled"
	TypeOfferDispatched  = "offer.dispatched"
	TypeOfferExpired     = "offer.expired"
	TypePaymentReviewed  = "payment.reviewed"
	TypeSOSTriggered     = "safety.sos"
)

// BookingEvent represents one lifecycle transition of a booking, emitted
// after the change has been persisted. The payload carries event-specific
// data serialized as JSON so handlers stay decoupled from service types.
type BookingEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants above
	Type string `json:"type"`

	// BookingID identifies the booking the event belongs to
	BookingID uuid.UUID `json:"booking_id"`

	// Payload contains event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *BookingEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewBookingEvent creates a new BookingEvent with the specified type,
// booking and payload. A nil payload is allowed.
func NewBookingEvent(eventType string, bookingID uuid.UUID, payload interface{}) (*BookingEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &BookingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		BookingID: bookingID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *BookingEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *BookingEvent) error
}
