package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/ledger"
	"github.com/pawtrol/pawtrol-api/internal/service/relay"
	"github.com/pawtrol/pawtrol-api/internal/service/safety"
	"github.com/stretchr/testify/require"
)

// newAuthedRequest builds a request carrying the given user ID in its
// context, the way the auth middleware would.
func newAuthedRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals the recorded response body into v.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

// mockLedgerService is a function-field mock of ledger.LedgerService.
type mockLedgerService struct {
	CreateBookingFn   func(ctx context.Context, ownerID uuid.UUID, req ledger.CreateBookingRequest) (*domain.Booking, error)
	GetBookingFn      func(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)
	ListBookingsFn    func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error)
	CancelBookingFn   func(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.Booking, error)
	CompleteBookingFn func(ctx context.Context, providerID, bookingID uuid.UUID) (*domain.Booking, error)
}

func (m *mockLedgerService) CreateBooking(ctx context.Context, ownerID uuid.UUID, req ledger.CreateBookingRequest) (*domain.Booking, error) {
	return m.CreateBookingFn(ctx, ownerID, req)
}

func (m *mockLedgerService) GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
	return m.GetBookingFn(ctx, actorID, bookingID)
}

func (m *mockLedgerService) ListBookings(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	return m.ListBookingsFn(ctx, ownerID)
}

func (m *mockLedgerService) CancelBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.Booking, error) {
	return m.CancelBookingFn(ctx, ownerID, bookingID)
}

func (m *mockLedgerService) CompleteBooking(ctx context.Context, providerID, bookingID uuid.UUID) (*domain.Booking, error) {
	return m.CompleteBookingFn(ctx, providerID, bookingID)
}

// mockDispatchService is a function-field mock of dispatch.DispatchService.
type mockDispatchService struct {
	DispatchBookingFn func(ctx context.Context, ownerID, bookingID uuid.UUID) ([]*domain.InboxOffer, error)
	ListInboxFn       func(ctx context.Context, providerID uuid.UUID) ([]*dispatch.InboxEntry, error)
	RespondToOfferFn  func(ctx context.Context, providerID, offerID uuid.UUID, accept bool) (*dispatch.OfferResolution, error)
}

func (m *mockDispatchService) DispatchBooking(ctx context.Context, ownerID, bookingID uuid.UUID) ([]*domain.InboxOffer, error) {
	return m.DispatchBookingFn(ctx, ownerID, bookingID)
}

func (m *mockDispatchService) ListInbox(ctx context.Context, providerID uuid.UUID) ([]*dispatch.InboxEntry, error) {
	return m.ListInboxFn(ctx, providerID)
}

func (m *mockDispatchService) RespondToOffer(ctx context.Context, providerID, offerID uuid.UUID, accept bool) (*dispatch.OfferResolution, error) {
	return m.RespondToOfferFn(ctx, providerID, offerID, accept)
}

// mockHandshakeService is a function-field mock of handshake.HandshakeService.
type mockHandshakeService struct {
	GeneratePINFn func(ctx context.Context, ownerID, bookingID uuid.UUID) (string, error)
	VerifyPINFn   func(ctx context.Context, providerID, bookingID uuid.UUID, pin string) error
}

func (m *mockHandshakeService) GeneratePIN(ctx context.Context, ownerID, bookingID uuid.UUID) (string, error) {
	return m.GeneratePINFn(ctx, ownerID, bookingID)
}

func (m *mockHandshakeService) VerifyPIN(ctx context.Context, providerID, bookingID uuid.UUID, pin string) error {
	return m.VerifyPINFn(ctx, providerID, bookingID, pin)
}

// mockRelayService is a function-field mock of relay.RelayService.
type mockRelayService struct {
	ReportLocationFn    func(ctx context.Context, providerID, bookingID uuid.UUID, req relay.ReportLocationRequest) (*domain.LocationPing, error)
	GetCurrentFn        func(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.LocationPing, error)
	CurrentForBookingFn func(ctx context.Context, bookingID uuid.UUID) (*domain.LocationPing, error)
}

func (m *mockRelayService) ReportLocation(ctx context.Context, providerID, bookingID uuid.UUID, req relay.ReportLocationRequest) (*domain.LocationPing, error) {
	return m.ReportLocationFn(ctx, providerID, bookingID, req)
}

func (m *mockRelayService) GetCurrent(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.LocationPing, error) {
	return m.GetCurrentFn(ctx, actorID, bookingID)
}

func (m *mockRelayService) CurrentForBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LocationPing, error) {
	return m.CurrentForBookingFn(ctx, bookingID)
}

func (m *mockRelayService) CloseChannel(bookingID uuid.UUID) {}

// mockPaymentsService is a function-field mock of payments.PaymentsService.
type mockPaymentsService struct {
	SubmitManualProofFn     func(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, proofURL string) (*domain.PaymentRecord, error)
	ReviewManualProofFn     func(ctx context.Context, recordID uuid.UUID, approve bool) (*domain.PaymentRecord, error)
	ConfirmGatewayPaymentFn func(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, transactionID string) (*domain.PaymentRecord, error)
	ListPaymentsFn          func(ctx context.Context, actorID, bookingID uuid.UUID) ([]*domain.PaymentRecord, error)
}

func (m *mockPaymentsService) SubmitManualProof(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, proofURL string) (*domain.PaymentRecord, error) {
	return m.SubmitManualProofFn(ctx, ownerID, bookingID, amount, proofURL)
}

func (m *mockPaymentsService) ReviewManualProof(ctx context.Context, recordID uuid.UUID, approve bool) (*domain.PaymentRecord, error) {
	return m.ReviewManualProofFn(ctx, recordID, approve)
}

func (m *mockPaymentsService) ConfirmGatewayPayment(ctx context.Context, ownerID, bookingID uuid.UUID, amount int64, transactionID string) (*domain.PaymentRecord, error) {
	return m.ConfirmGatewayPaymentFn(ctx, ownerID, bookingID, amount, transactionID)
}

func (m *mockPaymentsService) ListPayments(ctx context.Context, actorID, bookingID uuid.UUID) ([]*domain.PaymentRecord, error) {
	return m.ListPaymentsFn(ctx, actorID, bookingID)
}

// mockSafetyService is a function-field mock of safety.SafetyService.
type mockSafetyService struct {
	AddContactFn        func(ctx context.Context, ownerID uuid.UUID, name, phone string) (*domain.EmergencyContact, error)
	ListContactsFn      func(ctx context.Context, ownerID uuid.UUID) ([]*domain.EmergencyContact, error)
	RemoveContactFn     func(ctx context.Context, ownerID, contactID uuid.UUID) error
	ShareTripFn         func(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.SafetyShareToken, error)
	ResolveShareTokenFn func(ctx context.Context, token string) (*safety.TripShareView, error)
	TriggerSOSFn        func(ctx context.Context, ownerID, bookingID uuid.UUID, lat, lng float64) (*safety.SOSResult, error)
}

func (m *mockSafetyService) AddContact(ctx context.Context, ownerID uuid.UUID, name, phone string) (*domain.EmergencyContact, error) {
	return m.AddContactFn(ctx, ownerID, name, phone)
}

func (m *mockSafetyService) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*domain.EmergencyContact, error) {
	return m.ListContactsFn(ctx, ownerID)
}

func (m *mockSafetyService) RemoveContact(ctx context.Context, ownerID, contactID uuid.UUID) error {
	return m.RemoveContactFn(ctx, ownerID, contactID)
}

func (m *mockSafetyService) ShareTrip(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.SafetyShareToken, error) {
	return m.ShareTripFn(ctx, ownerID, bookingID)
}

func (m *mockSafetyService) ResolveShareToken(ctx context.Context, token string) (*safety.TripShareView, error) {
	return m.ResolveShareTokenFn(ctx, token)
}

func (m *mockSafetyService) TriggerSOS(ctx context.Context, ownerID, bookingID uuid.UUID, lat, lng float64) (*safety.SOSResult, error) {
	return m.TriggerSOSFn(ctx, ownerID, bookingID, lat, lng)
}
