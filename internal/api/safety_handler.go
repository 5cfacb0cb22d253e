package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/api/middleware"
	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
	"github.com/pawtrol/pawtrol-api/internal/redact"
	"github.com/pawtrol/pawtrol-api/internal/service/safety"
)

// SafetyHandler handles emergency contact, trip sharing and SOS requests.
type SafetyHandler struct {
	safetyService safety.SafetyService
	logger        *slog.Logger
}

// NewSafetyHandler creates a new SafetyHandler.
func NewSafetyHandler(safetyService safety.SafetyService, logger *slog.Logger) *SafetyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SafetyHandler")
	}

	return &SafetyHandler{
		safetyService: safetyService,
		logger:        logger.With(slog.String("component", "safety_handler")),
	}
}

// AddContact handles POST /contacts requests.
func (h *SafetyHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AddContactRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	contact, err := h.safetyService.AddContact(r.Context(), ownerID, req.Name, req.Phone)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, contactToResponse(contact))
}

// ListContacts handles GET /contacts requests.
func (h *SafetyHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	contacts, err := h.safetyService.ListContacts(r.Context(), ownerID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	responses := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		responses = append(responses, contactToResponse(contact))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RemoveContact handles DELETE /contacts/{id} requests.
func (h *SafetyHandler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Contact ID is required")
		return
	}

	contactID, err := uuid.Parse(pathID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	if err := h.safetyService.RemoveContact(r.Context(), ownerID, contactID); err != nil {
		RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareTrip handles POST /bookings/{id}/share requests. It mints a
// time-limited read-only share token for an active booking.
func (h *SafetyHandler) ShareTrip(w http.ResponseWriter, r *http.Request) {
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

	token, err := h.safetyService.ShareTrip(r.Context(), ownerID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	// The token value stays out of the logs; holding it grants read access.
	log.Debug("trip share token minted", slog.String("booking_id", bookingID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, ShareTokenResponse{
		Token:     token.Token,
		BookingID: token.BookingID.String(),
		ExpiresAt: token.ExpiresAt,
	})
}

// ResolveShareToken handles GET /share/{token} requests. No authentication
// is required; the token itself is the credential.
func (h *SafetyHandler) ResolveShareToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Share token is required")
		return
	}

	view, err := h.safetyService.ResolveShareToken(r.Context(), token)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	resp := TripShareResponse{
		BookingID: view.BookingID.String(),
		Status:    string(view.Status),
		ExpiresAt: view.ExpiresAt,
	}
	if view.Location != nil {
		location := pingToResponse(view.Location)
		resp.Location = &location
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// TriggerSOS handles POST /bookings/{id}/sos requests. The alert fans out
// to every emergency contact; partial delivery failures are reported, not
// fatal.
func (h *SafetyHandler) TriggerSOS(w http.ResponseWriter, r *http.Request) {
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

	var req TriggerSOSRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.safetyService.TriggerSOS(r.Context(), ownerID, bookingID, req.Latitude, req.Longitude)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Warn("SOS triggered",
		slog.String("booking_id", bookingID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.Int("notified", len(result.Notifications)))
	shared.RespondWithJSON(w, r, http.StatusCreated, SOSResponse{
		EventID:         result.Event.ID.String(),
		BookingID:       result.Event.BookingID.String(),
		TriggeredAt:     result.Event.TriggeredAt,
		EmergencyNumber: result.EmergencyNumber,
		Notifications:   result.Notifications,
	})
}
