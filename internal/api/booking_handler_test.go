package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking(ownerID uuid.UUID, status domain.BookingStatus) *domain.Booking {
	now := time.Now().UTC()
	return &domain.Booking{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		PetID:       uuid.New(),
		ServiceType: domain.ServiceTypeWalker,
		ScheduledAt: now.Add(24 * time.Hour),
		Price:       2500,
		Status:      status,
		Payment:     domain.PaymentStatusUnpaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	petID := uuid.New()

	ledgerMock := &mockLedgerService{
		CreateBookingFn: func(ctx context.Context, gotOwner uuid.UUID, req ledger.CreateBookingRequest) (*domain.Booking, error) {
			assert.Equal(t, ownerID, gotOwner)
			assert.Equal(t, petID, req.PetID)
			assert.Equal(t, domain.ServiceTypeWalker, req.ServiceType)
			booking := testBooking(gotOwner, domain.BookingStatusPending)
			booking.PetID = req.PetID
			return booking, nil
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	body := CreateBookingRequest{
		PetID:       petID.String(),
		ServiceType: "walker",
		ScheduledAt: time.Now().UTC().Add(24 * time.Hour),
		Price:       2500,
	}
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings", body, ownerID)
	rr := httptest.NewRecorder()

	handler.CreateBooking(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp BookingResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, petID.String(), resp.PetID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "unpaid", resp.PaymentStatus)
	assert.Empty(t, resp.ProviderID)
}

func TestBookingHandler_CreateBooking_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body CreateBookingRequest
	}{
		{
			name: "missing pet ID",
			body: CreateBookingRequest{
				ServiceType: "walker",
				ScheduledAt: time.Now().Add(time.Hour),
				Price:       100,
			},
		},
		{
			name: "unknown service type",
			body: CreateBookingRequest{
				PetID:       uuid.New().String(),
				ServiceType: "groomer",
				ScheduledAt: time.Now().Add(time.Hour),
				Price:       100,
			},
		},
		{
			name: "zero price",
			body: CreateBookingRequest{
				PetID:       uuid.New().String(),
				ServiceType: "walker",
				ScheduledAt: time.Now().Add(time.Hour),
			},
		},
	}

	handler := NewBookingHandler(&mockLedgerService{}, &mockDispatchService{}, slog.Default())

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := newAuthedRequest(t, http.MethodPost, "/api/bookings", tc.body, uuid.New())
			rr := httptest.NewRecorder()

			handler.CreateBooking(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestBookingHandler_CreateBooking_PetNotOwned(t *testing.T) {
	t.Parallel()

	ledgerMock := &mockLedgerService{
		CreateBookingFn: func(ctx context.Context, ownerID uuid.UUID, req ledger.CreateBookingRequest) (*domain.Booking, error) {
			return nil, domain.ErrPetNotOwned
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	body := CreateBookingRequest{
		PetID:       uuid.New().String(),
		ServiceType: "walker",
		ScheduledAt: time.Now().UTC().Add(time.Hour),
		Price:       100,
	}
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings", body, uuid.New())
	rr := httptest.NewRecorder()

	handler.CreateBooking(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestBookingHandler_CreateBooking_Unauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewBookingHandler(&mockLedgerService{}, &mockDispatchService{}, slog.Default())

	// No user ID in context.
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	rr := httptest.NewRecorder()

	handler.CreateBooking(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBookingHandler_GetBooking(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	booking := testBooking(ownerID, domain.BookingStatusConfirmed)

	ledgerMock := &mockLedgerService{
		GetBookingFn: func(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
			assert.Equal(t, booking.ID, bookingID)
			return booking, nil
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	req := newAuthedRequest(t, http.MethodGet, "/api/bookings/"+booking.ID.String(), nil, ownerID)
	req = withURLParam(req, "id", booking.ID.String())
	rr := httptest.NewRecorder()

	handler.GetBooking(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp BookingResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, booking.ID.String(), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestBookingHandler_GetBooking_NotFound(t *testing.T) {
	t.Parallel()

	ledgerMock := &mockLedgerService{
		GetBookingFn: func(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
			return nil, ledger.ErrBookingNotFound
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	id := uuid.New()
	req := newAuthedRequest(t, http.MethodGet, "/api/bookings/"+id.String(), nil, uuid.New())
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.GetBooking(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBookingHandler_GetBooking_InvalidID(t *testing.T) {
	t.Parallel()

	handler := NewBookingHandler(&mockLedgerService{}, &mockDispatchService{}, slog.Default())

	req := newAuthedRequest(t, http.MethodGet, "/api/bookings/not-a-uuid", nil, uuid.New())
	req = withURLParam(req, "id", "not-a-uuid")
	rr := httptest.NewRecorder()

	handler.GetBooking(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBookingHandler_ListBookings(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	ledgerMock := &mockLedgerService{
		ListBookingsFn: func(ctx context.Context, gotOwner uuid.UUID) ([]*domain.Booking, error) {
			return []*domain.Booking{
				testBooking(gotOwner, domain.BookingStatusPending),
				testBooking(gotOwner, domain.BookingStatusCompleted),
			}, nil
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	req := newAuthedRequest(t, http.MethodGet, "/api/bookings", nil, ownerID)
	rr := httptest.NewRecorder()

	handler.ListBookings(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []BookingResponse
	decodeBody(t, rr, &resp)
	assert.Len(t, resp, 2)
}

func TestBookingHandler_CancelBooking_Conflict(t *testing.T) {
	t.Parallel()

	ledgerMock := &mockLedgerService{
		CancelBookingFn: func(ctx context.Context, ownerID, bookingID uuid.UUID) (*domain.Booking, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	id := uuid.New()
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+id.String()+"/cancel", nil, uuid.New())
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.CancelBooking(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBookingHandler_CompleteBooking(t *testing.T) {
	t.Parallel()

	providerID := uuid.New()
	booking := testBooking(uuid.New(), domain.BookingStatusCompleted)
	booking.ProviderID = providerID
	now := time.Now().UTC()
	booking.CompletedAt = &now

	ledgerMock := &mockLedgerService{
		CompleteBookingFn: func(ctx context.Context, gotProvider, bookingID uuid.UUID) (*domain.Booking, error) {
			assert.Equal(t, providerID, gotProvider)
			return booking, nil
		},
	}
	handler := NewBookingHandler(ledgerMock, &mockDispatchService{}, slog.Default())

	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+booking.ID.String()+"/complete", nil, providerID)
	req = withURLParam(req, "id", booking.ID.String())
	rr := httptest.NewRecorder()

	handler.CompleteBooking(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp BookingResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.CompletedAt)
	assert.Equal(t, providerID.String(), resp.ProviderID)
}

func TestBookingHandler_DispatchBooking(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	bookingID := uuid.New()

	dispatchMock := &mockDispatchService{
		DispatchBookingFn: func(ctx context.Context, gotOwner, gotBooking uuid.UUID) ([]*domain.InboxOffer, error) {
			assert.Equal(t, ownerID, gotOwner)
			assert.Equal(t, bookingID, gotBooking)
			offer, err := domain.NewInboxOffer(gotBooking, uuid.New(), 300)
			require.NoError(t, err)
			return []*domain.InboxOffer{offer}, nil
		},
	}
	handler := NewBookingHandler(&mockLedgerService{}, dispatchMock, slog.Default())

	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+bookingID.String()+"/dispatch", nil, ownerID)
	req = withURLParam(req, "id", bookingID.String())
	rr := httptest.NewRecorder()

	handler.DispatchBooking(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp []OfferResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, bookingID.String(), resp[0].BookingID)
	assert.Equal(t, "open", resp[0].Status)
}

func TestBookingHandler_DispatchBooking_NoEligibleProviders(t *testing.T) {
	t.Parallel()

	dispatchMock := &mockDispatchService{
		DispatchBookingFn: func(ctx context.Context, ownerID, bookingID uuid.UUID) ([]*domain.InboxOffer, error) {
			return nil, dispatch.ErrNoEligibleProviders
		},
	}
	handler := NewBookingHandler(&mockLedgerService{}, dispatchMock, slog.Default())

	id := uuid.New()
	req := newAuthedRequest(t, http.MethodPost, "/api/bookings/"+id.String()+"/dispatch", nil, uuid.New())
	req = withURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	handler.DispatchBooking(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
