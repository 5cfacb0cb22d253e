package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// LocationStore implements the store.LocationStore interface
// using a PostgreSQL database as the storage backend. Pings are an
// append-only audit log; rows are never updated or deleted.
type LocationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewLocationStore creates a new PostgreSQL implementation of the
// LocationStore interface. If logger is nil, a default logger will be used.
func NewLocationStore(db store.DBTX, logger *slog.Logger) *LocationStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LocationStore{
		db:     db,
		logger: logger.With(slog.String("component", "location_store")),
	}
}

// Ensure LocationStore implements store.LocationStore
var _ store.LocationStore = (*LocationStore)(nil)

// Append implements store.LocationStore.Append.
func (s *LocationStore) Append(ctx context.Context, ping *domain.LocationPing) error {
	if err := ping.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location_pings (
			id, booking_id, latitude, longitude, accuracy, speed, received_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		ping.ID,
		ping.BookingID,
		ping.Latitude,
		ping.Longitude,
		ping.Accuracy,
		ping.Speed,
		ping.ReceivedAt,
	)
	return mapError(err)
}

// LatestByBooking implements store.LocationStore.LatestByBooking.
func (s *LocationStore) LatestByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) (*domain.LocationPing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, booking_id, latitude, longitude, accuracy, speed, received_at
		FROM location_pings
		WHERE booking_id = $1
		ORDER BY received_at DESC
		LIMIT 1
	`, bookingID)

	var p domain.LocationPing
	if err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Latitude,
		&p.Longitude,
		&p.Accuracy,
		&p.Speed,
		&p.ReceivedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPingNotFound
		}
		return nil, mapError(err)
	}
	return &p, nil
}
