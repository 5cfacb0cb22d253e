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
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
)

// OfferHandler handles the provider inbox HTTP requests.
type OfferHandler struct {
	dispatchService dispatch.DispatchService
	logger          *slog.Logger
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(dispatchService dispatch.DispatchService, logger *slog.Logger) *OfferHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OfferHandler")
	}

	return &OfferHandler{
		dispatchService: dispatchService,
		logger:          logger.With(slog.String("component", "offer_handler")),
	}
}

// ListInbox handles GET /inbox requests. It returns the provider's open
// offers with their remaining TTLs, oldest first.
func (h *OfferHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.GetUserID(r)
	if !ok || providerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	entries, err := h.dispatchService.ListInbox(r.Context(), providerID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	responses := make([]InboxEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, inboxEntryToResponse(entry))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RespondToOffer handles POST /offers/{id}/respond requests. Acceptance
// confirms the booking and assigns the provider; rejection only closes
// the offer. Either way the response carries the resulting booking
// snapshot next to the resolved offer.
func (h *OfferHandler) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	providerID, ok := middleware.GetUserID(r)
	if !ok || providerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Offer ID is required")
		return
	}

	offerID, err := uuid.Parse(pathID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid offer ID format")
		return
	}

	var req RespondOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	resolution, err := h.dispatchService.RespondToOffer(r.Context(), providerID, offerID, *req.Accept)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("offer resolved",
		slog.String("offer_id", offerID.String()),
		slog.String("provider_id", providerID.String()),
		slog.String("status", string(resolution.Offer.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, resolutionToResponse(resolution))
}
