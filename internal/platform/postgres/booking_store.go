package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// BookingStore implements the store.BookingStore interface
// using a PostgreSQL database as the storage backend.
type BookingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewBookingStore creates a new PostgreSQL implementation of the BookingStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewBookingStore(db store.DBTX, logger *slog.Logger) *BookingStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingStore{
		db:     db,
		logger: logger.With(slog.String("component", "booking_store")),
	}
}

// Ensure BookingStore implements store.BookingStore
var _ store.BookingStore = (*BookingStore)(nil)

const bookingColumns = `
	id, owner_id, provider_id, pet_id, service_type,
	scheduled_at, price, status, payment_status,
	verification_pin, pin_attempts, completed_at,
	created_at, updated_at
`

// Create implements store.BookingStore.Create.
func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		booking.ID,
		booking.OwnerID,
		nullUUID(booking.ProviderID),
		booking.PetID,
		string(booking.ServiceType),
		booking.ScheduledAt,
		booking.Price,
		string(booking.Status),
		string(booking.Payment),
		nullString(booking.VerificationPIN),
		booking.PINAttempts,
		booking.CompletedAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	return mapError(err)
}

// GetByID implements store.BookingStore.GetByID.
func (s *BookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookingNotFound
		}
		return nil, mapError(err)
	}
	return booking, nil
}

// Update implements store.BookingStore.Update.
func (s *BookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET
			provider_id = $2,
			status = $3,
			payment_status = $4,
			verification_pin = $5,
			pin_attempts = $6,
			completed_at = $7,
			updated_at = $8
		WHERE id = $1
	`,
		booking.ID,
		nullUUID(booking.ProviderID),
		string(booking.Status),
		string(booking.Payment),
		nullString(booking.VerificationPIN),
		booking.PINAttempts,
		booking.CompletedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrBookingNotFound
	}
	return nil
}

// UpdateStatus implements store.BookingStore.UpdateStatus. The conditional
// UPDATE is the compare-and-swap: zero affected rows on an existing booking
// means its status changed underneath the caller.
func (s *BookingStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrBookingNotFound)
}

// UpdatePayment implements store.BookingStore.UpdatePayment. Both the
// booking status and the current payment status guard the write, so a
// cancellation or a competing payment landing between a caller's read and
// this update surfaces as a conflict instead of being overwritten.
func (s *BookingStore) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
	from, to domain.PaymentStatus,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = $4, updated_at = $5
		WHERE id = $1 AND status = $2 AND payment_status = $3
	`, id, string(status), string(from), string(to), time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrBookingNotFound)
}

// SetPINState implements store.BookingStore.SetPINState. The status guard
// keeps a PIN write off a booking that was cancelled or started while the
// caller held its snapshot.
func (s *BookingStore) SetPINState(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
	pin string,
	attempts int,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET verification_pin = $3, pin_attempts = $4, updated_at = $5
		WHERE id = $1 AND status = $2
	`, id, string(status), nullString(pin), attempts, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrBookingNotFound)
}

// AssignProvider implements store.BookingStore.AssignProvider.
func (s *BookingStore) AssignProvider(
	ctx context.Context,
	id, providerID uuid.UUID,
	status domain.BookingStatus,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET provider_id = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(status), providerID, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrBookingNotFound)
}

// SetCompletedAt implements store.BookingStore.SetCompletedAt.
func (s *BookingStore) SetCompletedAt(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET completed_at = $2, updated_at = $3
		WHERE id = $1
	`, id, completedAt, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrBookingNotFound
	}
	return nil
}

// ListByOwner implements store.BookingStore.ListByOwner.
func (s *BookingStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	out := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *BookingStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b           domain.Booking
		providerID  uuid.NullUUID
		serviceType string
		status      string
		payment     string
		pin         sql.NullString
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&providerID,
		&b.PetID,
		&serviceType,
		&b.ScheduledAt,
		&b.Price,
		&status,
		&payment,
		&pin,
		&b.PINAttempts,
		&completedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if providerID.Valid {
		b.ProviderID = providerID.UUID
	}
	b.ServiceType = domain.ServiceType(serviceType)
	b.Status = domain.BookingStatus(status)
	b.Payment = domain.PaymentStatus(payment)
	if pin.Valid {
		b.VerificationPIN = pin.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
