package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/api/middleware"
	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/redact"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/ledger"
)

// BookingHandler handles booking lifecycle HTTP requests.
type BookingHandler struct {
	ledgerService   ledger.LedgerService
	dispatchService dispatch.DispatchService
	logger          *slog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(
	ledgerService ledger.LedgerService,
	dispatchService dispatch.DispatchService,
	logger *slog.Logger,
) *BookingHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BookingHandler")
	}

	return &BookingHandler{
		ledgerService:   ledgerService,
		dispatchService: dispatchService,
		logger:          logger.With(slog.String("component", "booking_handler")),
	}
}

// CreateBooking handles POST /bookings requests.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateBookingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	petID, err := uuid.Parse(req.PetID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid pet ID format")
		return
	}

	booking, err := h.ledgerService.CreateBooking(r.Context(), ownerID, ledger.CreateBookingRequest{
		PetID:       petID,
		ServiceType: domain.ServiceType(req.ServiceType),
		ScheduledAt: req.ScheduledAt,
		Price:       req.Price,
	})
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("owner_id", ownerID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, bookingToResponse(booking))
}

// ListBookings handles GET /bookings requests. It returns the owner's
// bookings, newest first.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookings, err := h.ledgerService.ListBookings(r.Context(), ownerID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, bookingToResponse(booking))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetBooking handles GET /bookings/{id} requests.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r)
	if !ok || actorID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.ledgerService.GetBooking(r.Context(), actorID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, bookingToResponse(booking))
}

// CancelBooking handles POST /bookings/{id}/cancel requests.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.ledgerService.CancelBooking(r.Context(), ownerID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("booking cancelled", slog.String("booking_id", bookingID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, bookingToResponse(booking))
}

// CompleteBooking handles POST /bookings/{id}/complete requests. Only the
// assigned provider may complete an in-progress booking.
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	providerID, ok := middleware.GetUserID(r)
	if !ok || providerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.ledgerService.CompleteBooking(r.Context(), providerID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("booking completed",
		slog.String("booking_id", bookingID.String()),
		slog.String("provider_id", providerID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, bookingToResponse(booking))
}

// DispatchBooking handles POST /bookings/{id}/dispatch requests. It fans
// the pending booking out to eligible providers as inbox offers.
func (h *BookingHandler) DispatchBooking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	offers, err := h.dispatchService.DispatchBooking(r.Context(), ownerID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	responses := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		responses = append(responses, offerToResponse(offer))
	}

	log.Debug("booking dispatched",
		slog.String("booking_id", bookingID.String()),
		slog.Int("offers", len(responses)))
	shared.RespondWithJSON(w, r, http.StatusCreated, responses)
}

// parseBookingID extracts and parses the booking ID from the URL path,
// writing the error response itself when the ID is missing or malformed.
func parseBookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Booking ID is required")
		return uuid.Nil, false
	}

	bookingID, err := uuid.Parse(pathID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid booking ID format")
		return uuid.Nil, false
	}
	return bookingID, true
}
