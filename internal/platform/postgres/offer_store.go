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

// OfferStore implements the store.OfferStore interface
// using a PostgreSQL database as the storage backend.
//
// A partial unique index on (booking_id, provider_id) WHERE status = 'open'
// enforces the one-open-offer-per-pair invariant at the schema level.
type OfferStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOfferStore creates a new PostgreSQL implementation of the OfferStore
// interface. If logger is nil, a default logger will be used.
func NewOfferStore(db store.DBTX, logger *slog.Logger) *OfferStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OfferStore{
		db:     db,
		logger: logger.With(slog.String("component", "offer_store")),
	}
}

// Ensure OfferStore implements store.OfferStore
var _ store.OfferStore = (*OfferStore)(nil)

const offerColumns = `
	id, booking_id, provider_id, ttl_seconds, status, created_at, updated_at
`

// Create implements store.OfferStore.Create.
func (s *OfferStore) Create(ctx context.Context, offer *domain.InboxOffer) error {
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox_offers (`+offerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		offer.ID,
		offer.BookingID,
		offer.ProviderID,
		offer.TTLSeconds,
		string(offer.Status),
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	return mapError(err)
}

// GetByID implements store.OfferStore.GetByID.
func (s *OfferStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxOffer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+offerColumns+`
		FROM inbox_offers
		WHERE id = $1
	`, id)

	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOfferNotFound
		}
		return nil, mapError(err)
	}
	return offer, nil
}

// ListOpenByProvider implements store.OfferStore.ListOpenByProvider.
func (s *OfferStore) ListOpenByProvider(
	ctx context.Context,
	providerID uuid.UUID,
) ([]*domain.InboxOffer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+offerColumns+`
		FROM inbox_offers
		WHERE provider_id = $1 AND status = 'open'
		ORDER BY created_at ASC
	`, providerID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.collectOffers(rows)
}

// ListByBooking implements store.OfferStore.ListByBooking.
func (s *OfferStore) ListByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*domain.InboxOffer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+offerColumns+`
		FROM inbox_offers
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.collectOffers(rows)
}

// UpdateStatus implements store.OfferStore.UpdateStatus.
func (s *OfferStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.OfferStatus,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inbox_offers
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
	return checkRowsAffected(result, exists, store.ErrOfferNotFound)
}

// ExpireOverdue implements store.OfferStore.ExpireOverdue.
func (s *OfferStore) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inbox_offers
		SET status = 'expired', updated_at = $1
		WHERE status = 'open'
		  AND created_at + make_interval(secs => ttl_seconds) <= $1
	`, now)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (s *OfferStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inbox_offers WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (s *OfferStore) collectOffers(rows *sql.Rows) ([]*domain.InboxOffer, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	out := make([]*domain.InboxOffer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func scanOffer(row rowScanner) (*domain.InboxOffer, error) {
	var (
		o      domain.InboxOffer
		status string
	)
	if err := row.Scan(
		&o.ID,
		&o.BookingID,
		&o.ProviderID,
		&o.TTLSeconds,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OfferStatus(status)
	return &o, nil
}
