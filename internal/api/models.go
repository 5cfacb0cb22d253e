package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/safety"
)

// CreateBookingRequest represents the booking creation request body.
type CreateBookingRequest struct {
	PetID       string    `json:"pet_id"        validate:"required,uuid"`
	ServiceType string    `json:"service_type"  validate:"required,oneof=walker daycare vet"`
	ScheduledAt time.Time `json:"scheduled_at"  validate:"required"`
	Price       int64     `json:"price"         validate:"required,gt=0"`
}

// RespondOfferRequest represents a provider's response to an inbox offer.
type RespondOfferRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// VerifyPINRequest represents the provider-side handshake request body.
type VerifyPINRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=10"`
}

// ReportLocationRequest represents one location ping from the provider.
type ReportLocationRequest struct {
	Latitude  float64 `json:"latitude"  validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
	Accuracy  float64 `json:"accuracy"  validate:"gte=0"`
	Speed     float64 `json:"speed"     validate:"gte=0"`
}

// SubmitManualPaymentRequest represents a manual proof-of-transfer submission.
type SubmitManualPaymentRequest struct {
	Amount   int64  `json:"amount"    validate:"required,gt=0"`
	ProofURL string `json:"proof_url" validate:"required,url"`
}

// ReviewPaymentRequest represents an operator's review decision.
type ReviewPaymentRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// GatewayPaymentRequest represents a gateway-confirmed payment notification.
type GatewayPaymentRequest struct {
	Amount        int64  `json:"amount"         validate:"required,gt=0"`
	TransactionID string `json:"transaction_id" validate:"required"`
}

// AddContactRequest represents a new emergency contact.
type AddContactRequest struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,max=32"`
}

// TriggerSOSRequest represents an SOS escalation with the owner's position.
type TriggerSOSRequest struct {
	Latitude  float64 `json:"latitude"  validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
}

// BookingResponse represents the response data for a booking.
type BookingResponse struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	ProviderID    string     `json:"provider_id,omitempty"`
	PetID         string     `json:"pet_id"`
	ServiceType   string     `json:"service_type"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Price         int64      `json:"price"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OfferResponse represents the response data for an inbox offer.
type OfferResponse struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	ProviderID string    `json:"provider_id"`
	TTLSeconds int       `json:"ttl_seconds"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// InboxEntryResponse is one open offer with its booking summary and the
// live countdown the client renders.
type InboxEntryResponse struct {
	Offer            OfferResponse   `json:"offer"`
	Booking          BookingResponse `json:"booking"`
	ExpiresInSeconds int             `json:"expires_in_seconds"`
}

// OfferResolutionResponse is the outcome of responding to an offer: the
// resolved offer plus the booking as it stands afterwards.
type OfferResolutionResponse struct {
	Offer   OfferResponse   `json:"offer"`
	Booking BookingResponse `json:"booking"`
}

// PINResponse carries a freshly issued verification PIN to the owner. This
// is the only place the PIN ever appears in a response.
type PINResponse struct {
	BookingID string `json:"booking_id"`
	PIN       string `json:"pin"`
}

// LocationResponse represents a booking's live position.
type LocationResponse struct {
	BookingID  string    `json:"booking_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Speed      float64   `json:"speed,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// PaymentResponse represents the response data for a payment record.
type PaymentResponse struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	ProofURL      string    `json:"proof_url,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ReviewStatus  string    `json:"review_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ContactResponse represents the response data for an emergency contact.
type ContactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// ShareTokenResponse carries a freshly minted trip-share token.
type ShareTokenResponse struct {
	Token     string    `json:"token"`
	BookingID string    `json:"booking_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TripShareResponse is the read-only view served to a share-token holder.
type TripShareResponse struct {
	BookingID string            `json:"booking_id"`
	Status    string            `json:"status"`
	Location  *LocationResponse `json:"location,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// SOSResponse reports the recorded SOS event, the fixed emergency number
// and the per-contact delivery outcomes.
type SOSResponse struct {
	EventID         string                      `json:"event_id"`
	BookingID       string                      `json:"booking_id"`
	TriggeredAt     time.Time                   `json:"triggered_at"`
	EmergencyNumber string                      `json:"emergency_number"`
	Notifications   []safety.NotificationResult `json:"notifications"`
}

// bookingToResponse converts a domain.Booking to a BookingResponse.
func bookingToResponse(booking *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            booking.ID.String(),
		OwnerID:       booking.OwnerID.String(),
		PetID:         booking.PetID.String(),
		ServiceType:   string(booking.ServiceType),
		ScheduledAt:   booking.ScheduledAt,
		Price:         booking.Price,
		Status:        string(booking.Status),
		PaymentStatus: string(booking.Payment),
		CompletedAt:   booking.CompletedAt,
		CreatedAt:     booking.CreatedAt,
		UpdatedAt:     booking.UpdatedAt,
	}
	if booking.ProviderID != uuid.Nil {
		resp.ProviderID = booking.ProviderID.String()
	}
	return resp
}

// offerToResponse converts a domain.InboxOffer to an OfferResponse.
func offerToResponse(offer *domain.InboxOffer) OfferResponse {
	return OfferResponse{
		ID:         offer.ID.String(),
		BookingID:  offer.BookingID.String(),
		ProviderID: offer.ProviderID.String(),
		TTLSeconds: offer.TTLSeconds,
		Status:     string(offer.Status),
		CreatedAt:  offer.CreatedAt,
	}
}

// resolutionToResponse converts a dispatch.OfferResolution to an
// OfferResolutionResponse.
func resolutionToResponse(resolution *dispatch.OfferResolution) OfferResolutionResponse {
	return OfferResolutionResponse{
		Offer:   offerToResponse(resolution.Offer),
		Booking: bookingToResponse(resolution.Booking),
	}
}

// inboxEntryToResponse converts a dispatch.InboxEntry to an InboxEntryResponse.
func inboxEntryToResponse(entry *dispatch.InboxEntry) InboxEntryResponse {
	return InboxEntryResponse{
		Offer:            offerToResponse(entry.Offer),
		Booking:          bookingToResponse(entry.Booking),
		ExpiresInSeconds: entry.ExpiresInSeconds,
	}
}

// pingToResponse converts a domain.LocationPing to a LocationResponse.
func pingToResponse(ping *domain.LocationPing) LocationResponse {
	return LocationResponse{
		BookingID:  ping.BookingID.String(),
		Latitude:   ping.Latitude,
		Longitude:  ping.Longitude,
		Accuracy:   ping.Accuracy,
		Speed:      ping.Speed,
		ReceivedAt: ping.ReceivedAt,
	}
}

// paymentToResponse converts a domain.PaymentRecord to a PaymentResponse.
func paymentToResponse(record *domain.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:            record.ID.String(),
		BookingID:     record.BookingID.String(),
		Amount:        record.Amount,
		Method:        string(record.Method),
		ProofURL:      record.ProofURL,
		TransactionID: record.TransactionID,
		ReviewStatus:  string(record.ReviewStatus),
		CreatedAt:     record.CreatedAt,
	}
}

// contactToResponse converts a domain.EmergencyContact to a ContactResponse.
func contactToResponse(contact *domain.EmergencyContact) ContactResponse {
	return ContactResponse{
		ID:        contact.ID.String(),
		Name:      contact.Name,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
	}
}
