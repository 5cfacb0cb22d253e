package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/service/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_SubmitManualProof(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	bookingID := uuid.New()

	paymentsMock := &mockPaymentsService{
		SubmitManualProofFn: func(ctx context.Context, gotOwner, gotBooking uuid.UUID, amount int64, proofURL string) (*domain.PaymentRecord, error) {
			assert.Equal(t, ownerID, gotOwner)
			assert.Equal(t, int64(2500), amount)
			assert.Equal(t, "https://bank.example/receipt/123", proofURL)
			return domain.NewManualPaymentRecord(gotBooking, amount, proofURL)
		},
	}
	handler := NewPaymentHandler(paymentsMock, slog.Default())

	body := SubmitManualPaymentRequest{Amount: 2500, ProofURL: "https://bank.example/receipt/123"}
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+bookingID.String()+"/payments", body, ownerID)
	req = withURLParam(req, "id", bookingID.String())
	rr := httptest.NewRecorder()

	handler.SubmitManualProof(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp PaymentResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "manual_transfer", resp.Method)
	assert.Equal(t, "pending", resp.ReviewStatus)
}

func TestPaymentHandler_SubmitManualProof_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"amount mismatch", domain.ErrAmountMismatch, http.StatusBadRequest},
		{"already paid", payments.ErrAlreadyPaid, http.StatusConflict},
		{"review pending", payments.ErrReviewPending, http.StatusConflict},
		{"not confirmed", domain.ErrPreconditionFailed, http.StatusConflict},
		{"not the owner", domain.ErrUnauthorized, http.StatusForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			paymentsMock := &mockPaymentsService{
				SubmitManualProofFn: func(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, proofURL string) (*domain.PaymentRecord, error) {
					return nil, tc.err
				},
			}
			handler := NewPaymentHandler(paymentsMock, slog.Default())

			id := uuid.New()
			body := SubmitManualPaymentRequest{Amount: 2500, ProofURL: "https://bank.example/r/1"}
			req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+id.String()+"/payments", body, uuid.New())
			req = withURLParam(req, "id", id.String())
			rr := httptest.NewRecorder()

			handler.SubmitManualProof(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestPaymentHandler_SubmitManualProof_MissingProof(t *testing.T) {
	t.Parallel()

	handler := NewPaymentHandler(&mockPaymentsService{}, slog.Default())

	id := uuid.New()
	body := SubmitManualPaymentRequest{Amount: 2500}
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+id.String()+"/payments", body, uuid.New())
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.SubmitManualProof(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentHandler_ConfirmGatewayPayment(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	bookingID := uuid.New()

	paymentsMock := &mockPaymentsService{
		ConfirmGatewayPaymentFn: func(ctx context.Context, gotOwner, gotBooking uuid.UUID, amount int64, transactionID string) (*domain.PaymentRecord, error) {
			assert.Equal(t, "txn_9f3a", transactionID)
			return domain.NewGatewayPaymentRecord(gotBooking, amount, transactionID)
		},
	}
	handler := NewPaymentHandler(paymentsMock, slog.Default())

	body := GatewayPaymentRequest{Amount: 2500, TransactionID: "txn_9f3a"}
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+bookingID.String()+"/payments/gateway", body, ownerID)
	req = withURLParam(req, "id", bookingID.String())
	rr := httptest.NewRecorder()

	handler.ConfirmGatewayPayment(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp PaymentResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "gateway", resp.Method)
	assert.Equal(t, "approved", resp.ReviewStatus)
}

func TestPaymentHandler_ReviewPayment_Approve(t *testing.T) {
	t.Parallel()

	record, err := domain.NewManualPaymentRecord(uuid.New(), 2500, "https://bank.example/r/1")
	require.NoError(t, err)

	paymentsMock := &mockPaymentsService{
		ReviewManualProofFn: func(ctx context.Context, recordID uuid.UUID, approve bool) (*domain.PaymentRecord, error) {
			assert.Equal(t, record.ID, recordID)
			assert.True(t, approve)
			record.ReviewStatus = domain.ReviewStatusApproved
			return record, nil
		},
	}
	handler := NewPaymentHandler(paymentsMock, slog.Default())

	approve := true
	body := ReviewPaymentRequest{Approve: &approve}
	req := newAuthedRequest(t, http.MethodPost, "/api/payments/"+record.ID.String()+"/review", body, uuid.New())
	req = withURLParam(req, "id", record.ID.String())
	rr := httptest.NewRecorder()

	handler.ReviewPayment(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp PaymentResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "approved", resp.ReviewStatus)
}

func TestPaymentHandler_ReviewPayment_AlreadyReviewed(t *testing.T) {
	t.Parallel()

	paymentsMock := &mockPaymentsService{
		ReviewManualProofFn: func(ctx context.Context, recordID uuid.UUID, approve bool) (*domain.PaymentRecord, error) {
			return nil, domain.ErrConflict
		},
	}
	handler := NewPaymentHandler(paymentsMock, slog.Default())

	approve := false
	id := uuid.New()
	req := newAuthedRequest(t, http.MethodPost, "/api/payments/"+id.String()+"/review",
		ReviewPaymentRequest{Approve: &approve}, uuid.New())
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.ReviewPayment(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPaymentHandler_ListPayments(t *testing.T) {
	t.Parallel()

	bookingID := uuid.New()
	paymentsMock := &mockPaymentsService{
		ListPaymentsFn: func(ctx context.Context, actorID, gotBooking uuid.UUID) ([]*domain.PaymentRecord, error) {
			first, err := domain.NewManualPaymentRecord(gotBooking, 2500, "https://bank.example/r/1")
			require.NoError(t, err)
			first.ReviewStatus = domain.ReviewStatusRejected
			second, err := domain.NewManualPaymentRecord(gotBooking, 2500, "https://bank.example/r/2")
			require.NoError(t, err)
			return []*domain.PaymentRecord{second, first}, nil
		},
	}
	handler := NewPaymentHandler(paymentsMock, slog.Default())

	req := newAuthedRequest(t, http.MethodGet, "/api/bookings/"+bookingID.String()+"/payments", nil, uuid.New())
	req = withURLParam(req, "id", bookingID.String())
	rr := httptest.NewRecorder()

	handler.ListPayments(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []PaymentResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "pending", resp[0].ReviewStatus)
	assert.Equal(t, "rejected", resp[1].ReviewStatus)
}
