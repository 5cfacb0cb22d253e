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
	"github.com/pawtrol/pawtrol-api/internal/service/payments"
)

// PaymentHandler handles payment reconciliation HTTP requests.
type PaymentHandler struct {
	paymentsService payments.PaymentsService
	logger          *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentsService payments.PaymentsService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PaymentHandler")
	}

	return &PaymentHandler{
		paymentsService: paymentsService,
		logger:          logger.With(slog.String("component", "payment_handler")),
	}
}

// SubmitManualProof handles POST /bookings/{id}/payments requests. The
// owner submits a proof-of-transfer reference for operator review.
func (h *PaymentHandler) SubmitManualProof(w http.ResponseWriter, r *http.Request) {
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

	var req SubmitManualPaymentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	record, err := h.paymentsService.SubmitManualProof(
		r.Context(),
		ownerID,
		bookingID,
		req.Amount,
		req.ProofURL,
	)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("manual payment submitted",
		slog.String("booking_id", bookingID.String()),
		slog.String("record_id", record.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, paymentToResponse(record))
}

// ConfirmGatewayPayment handles POST /bookings/{id}/payments/gateway
// requests. The gateway collaborator has already settled the charge.
func (h *PaymentHandler) ConfirmGatewayPayment(w http.ResponseWriter, r *http.Request) {
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

	var req GatewayPaymentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	record, err := h.paymentsService.ConfirmGatewayPayment(
		r.Context(),
		ownerID,
		bookingID,
		req.Amount,
		req.TransactionID,
	)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Debug("gateway payment confirmed",
		slog.String("booking_id", bookingID.String()),
		slog.String("record_id", record.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, paymentToResponse(record))
}

// ReviewPayment handles POST /payments/{id}/review requests. Routing
// restricts this to operator tokens.
func (h *PaymentHandler) ReviewPayment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Payment ID is required")
		return
	}

	recordID, err := uuid.Parse(pathID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	var req ReviewPaymentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	record, err := h.paymentsService.ReviewManualProof(r.Context(), recordID, *req.Approve)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	log.Info("manual payment reviewed",
		slog.String("record_id", recordID.String()),
		slog.String("review_status", string(record.ReviewStatus)))
	shared.RespondWithJSON(w, r, http.StatusOK, paymentToResponse(record))
}

// ListPayments handles GET /bookings/{id}/payments requests.
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r)
	if !ok || actorID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bookingID, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	records, err := h.paymentsService.ListPayments(r.Context(), actorID, bookingID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, paymentToResponse(record))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
