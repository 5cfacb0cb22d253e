package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/memory"
)

type paymentsFixture struct {
	svc        PaymentsService
	bookings   *memory.BookingStore
	payments   *memory.PaymentStore
	ownerID    uuid.UUID
	providerID uuid.UUID
	booking    *domain.Booking
}

func newPaymentsFixture(t *testing.T) *paymentsFixture {
	t.Helper()

	f := &paymentsFixture{
		bookings:   memory.NewBookingStore(),
		payments:   memory.NewPaymentStore(),
		ownerID:    uuid.New(),
		providerID: uuid.New(),
	}

	booking, err := domain.NewBooking(
		f.ownerID, uuid.New(), domain.ServiceTypeDaycare,
		time.Now().Add(24*time.Hour), 12000,
	)
	require.NoError(t, err)
	booking.ProviderID = f.providerID
	booking.Status = domain.BookingStatusConfirmed
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	f.booking = booking

	f.svc = NewPaymentsService(
		f.bookings, f.payments, events.NewInMemoryEventEmitter(nil), nil,
	)
	return f
}

func (f *paymentsFixture) paymentStatus(t *testing.T) domain.PaymentStatus {
	t.Helper()
	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	return booking.Payment
}

func TestSubmitManualProof(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusPending, record.ReviewStatus)
	assert.Equal(t, domain.PaymentMethodManual, record.Method)
	assert.Equal(t, domain.PaymentStatusPendingReview, f.paymentStatus(t))
}

func TestSubmitManualProof_AmountMismatch(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 11999, "https://bank.example/receipt/1",
	)
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)
	assert.Equal(t, domain.PaymentStatusUnpaid, f.paymentStatus(t))
}

func TestSubmitManualProof_RequiresConfirmedBooking(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	f.booking.Status = domain.BookingStatusPending
	f.booking.ProviderID = uuid.Nil
	require.NoError(t, f.bookings.Update(context.Background(), f.booking))

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestSubmitManualProof_WhileReviewPending(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	_, err = f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/2",
	)
	assert.ErrorIs(t, err, ErrReviewPending)
}

func TestSubmitManualProof_OnlyOwner(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.providerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReviewManualProof_Approve(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	reviewed, err := f.svc.ReviewManualProof(context.Background(), record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, reviewed.ReviewStatus)
	assert.Equal(t, domain.PaymentStatusPaid, f.paymentStatus(t))
}

func TestReviewManualProof_RejectReopensPayment(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	reviewed, err := f.svc.ReviewManualProof(context.Background(), record.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusRejected, reviewed.ReviewStatus)
	assert.Equal(t, domain.PaymentStatusUnpaid, f.paymentStatus(t))

	// The owner can submit again; the rejected record stays for audit.
	second, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/2",
	)
	require.NoError(t, err)

	records, err := f.svc.ListPayments(context.Background(), f.ownerID, f.booking.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NotEqual(t, record.ID, second.ID)
}

func TestReviewManualProof_DoubleReview(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	_, err = f.svc.ReviewManualProof(context.Background(), record.ID, true)
	require.NoError(t, err)

	_, err = f.svc.ReviewManualProof(context.Background(), record.ID, false)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.PaymentStatusPaid, f.paymentStatus(t), "approval is not undone")
}

func TestReviewManualProof_NotFound(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.ReviewManualProof(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestConfirmGatewayPayment(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.ConfirmGatewayPayment(
		context.Background(), f.ownerID, f.booking.ID, 12000, "txn_18829",
	)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, record.ReviewStatus)
	assert.Equal(t, domain.PaymentMethodGateway, record.Method)
	assert.Equal(t, domain.PaymentStatusPaid, f.paymentStatus(t))
}

func TestConfirmGatewayPayment_AlreadyPaid(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.ConfirmGatewayPayment(
		context.Background(), f.ownerID, f.booking.ID, 12000, "txn_1",
	)
	require.NoError(t, err)

	_, err = f.svc.ConfirmGatewayPayment(
		context.Background(), f.ownerID, f.booking.ID, 12000, "txn_2",
	)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestConfirmGatewayPayment_WhileReviewPending(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	// The gateway path is blocked too while a manual proof awaits review,
	// so the booking can never collect two paid transitions.
	_, err = f.svc.ConfirmGatewayPayment(
		context.Background(), f.ownerID, f.booking.ID, 12000, "txn_1",
	)
	assert.ErrorIs(t, err, ErrReviewPending)
	assert.Equal(t, domain.PaymentStatusPendingReview, f.paymentStatus(t))
}

func TestReviewManualProof_StaleRecordNeverUnpaysBooking(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	record, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	require.NoError(t, err)

	// The booking settles through another channel while the proof sits in
	// the review queue.
	require.NoError(t, f.bookings.UpdatePayment(
		context.Background(), f.booking.ID,
		domain.BookingStatusConfirmed,
		domain.PaymentStatusPendingReview, domain.PaymentStatusPaid,
	))

	// Rejecting the stale proof resolves the record but must not move the
	// paid booking back to unpaid.
	reviewed, err := f.svc.ReviewManualProof(context.Background(), record.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusRejected, reviewed.ReviewStatus)
	assert.Equal(t, domain.PaymentStatusPaid, f.paymentStatus(t))
}

func TestSubmitManualProof_CancelledBookingRejected(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	require.NoError(t, f.bookings.UpdateStatus(
		context.Background(), f.booking.ID,
		domain.BookingStatusConfirmed, domain.BookingStatusCancelled,
	))

	_, err := f.svc.SubmitManualProof(
		context.Background(), f.ownerID, f.booking.ID, 12000, "https://bank.example/receipt/1",
	)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	booking, err := f.bookings.GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, booking.Payment)
}

func TestConfirmGatewayPayment_AmountMismatch(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.ConfirmGatewayPayment(
		context.Background(), f.ownerID, f.booking.ID, 1, "txn_1",
	)
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)
}

func TestListPayments_Authorization(t *testing.T) {
	t.Parallel()
	f := newPaymentsFixture(t)

	_, err := f.svc.ListPayments(context.Background(), f.providerID, f.booking.ID)
	require.NoError(t, err, "assigned provider may view payment history")

	_, err = f.svc.ListPayments(context.Background(), uuid.New(), f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
