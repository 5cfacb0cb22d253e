package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/api/middleware"
	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/redact"
	"github.com/pawtrol/pawtrol-api/internal/service/relay"
)

// RelayHandler handles live location HTTP requests.
type RelayHandler struct {
	relayService relay.RelayService
	logger       *slog.Logger
}

// NewRelayHandler creates a new RelayHandler.
func NewRelayHandler(relayService relay.RelayService, logger *slog.Logger) *RelayHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RelayHandler")
	}

	return &RelayHandler{
		relayService: relayService,
		logger:       logger.With(slog.String("component", "relay_handler")),
	}
}

// ReportLocation handles POST /bookings/{id}/location requests from the
// assigned provider's device.
func (h *RelayHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
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

	var req ReportLocationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ping, err := h.relayService.ReportLocation(r.Context(), providerID, bookingID, relay.ReportLocationRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
	})
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	// A nil ping means the channel is closed and the ping was dropped.
	// Still accepted: the device loop must not treat it as a failure.
	if ping == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, pingToResponse(ping))
}

// GetLocation handles GET /bookings/{id}/location requests from either
// booking party.
func (h *RelayHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r)
	if !ok || actorID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	ping, err := h.relayService.GetCurrent(r.Context(), actorID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pingToResponse(ping))
}
