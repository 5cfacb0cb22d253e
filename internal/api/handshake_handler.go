package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/api/middleware"
	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/redact"
	"github.com/pawtrol/pawtrol-api/internal/service/handshake"
)

// HandshakeHandler handles the start-of-service trust handshake requests.
type HandshakeHandler struct {
	handshakeService handshake.HandshakeService
	logger           *slog.Logger
}

// NewHandshakeHandler creates a new HandshakeHandler.
func NewHandshakeHandler(
	handshakeService handshake.HandshakeService,
	logger *slog.Logger,
) *HandshakeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HandshakeHandler")
	}

	return &HandshakeHandler{
		handshakeService: handshakeService,
		logger:           logger.With(slog.String("component", "handshake_handler")),
	}
}

// GeneratePIN handles POST /bookings/{id}/pin requests. The PIN is echoed
// to the owner here and nowhere else.
func (h *HandshakeHandler) GeneratePIN(w http.ResponseWriter, r *http.Request) {
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

	pin, err := h.handshakeService.GeneratePIN(r.Context(), ownerID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	// The PIN itself never hits the logs.
	log.Debug("verification PIN issued", slog.String("booking_id", bookingID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, PINResponse{
		BookingID: bookingID.String(),
		PIN:       pin,
	})
}

// VerifyPIN handles POST /bookings/{id}/pin/verify requests. On success
// the booking moves to in progress.
func (h *HandshakeHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
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

	var req VerifyPINRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.handshakeService.VerifyPIN(r.Context(), providerID, bookingID, req.PIN); err != nil {
		// Failed attempts deserve log visibility; they feed the lockout.
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("handshake verified, service started",
		slog.String("booking_id", bookingID.String()),
		slog.String("provider_id", providerID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"booking_id": bookingID.String(),
		"status":     "in_progress",
	})
}
