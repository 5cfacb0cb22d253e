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

// PaymentStore implements the store.PaymentStore interface
// using a PostgreSQL database as the storage backend.
type PaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPaymentStore creates a new PostgreSQL implementation of the
// PaymentStore interface. If logger is nil, a default logger will be used.
func NewPaymentStore(db store.DBTX, logger *slog.Logger) *PaymentStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PaymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "payment_store")),
	}
}

// Ensure PaymentStore implements store.PaymentStore
var _ store.PaymentStore = (*PaymentStore)(nil)

const paymentColumns = `
	id, booking_id, amount, method, proof_url, transaction_id,
	review_status, created_at, updated_at
`

// Create implements store.PaymentStore.Create.
func (s *PaymentStore) Create(ctx context.Context, record *domain.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_records (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		record.ID,
		record.BookingID,
		record.Amount,
		string(record.Method),
		nullString(record.ProofURL),
		nullString(record.TransactionID),
		string(record.ReviewStatus),
		record.CreatedAt,
		record.UpdatedAt,
	)
	return mapError(err)
}

// GetByID implements store.PaymentStore.GetByID.
func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_records
		WHERE id = $1
	`, id)

	record, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		return nil, mapError(err)
	}
	return record, nil
}

// ListByBooking implements store.PaymentStore.ListByBooking.
func (s *PaymentStore) ListByBooking(
	ctx context.Context,
	bookingID uuid.UUID,
) ([]*domain.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_records
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	out := make([]*domain.PaymentRecord, 0)
	for rows.Next() {
		record, err := scanPayment(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// UpdateReviewStatus implements store.PaymentStore.UpdateReviewStatus.
func (s *PaymentStore) UpdateReviewStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.ReviewStatus,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE payment_records
		SET review_status = $3, updated_at = $4
		WHERE id = $1 AND review_status = $2
	`, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrPaymentNotFound)
}

func (s *PaymentStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_records WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var (
		p             domain.PaymentRecord
		method        string
		proofURL      sql.NullString
		transactionID sql.NullString
		reviewStatus  string
	)
	if err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&method,
		&proofURL,
		&transactionID,
		&reviewStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Method = domain.PaymentMethod(method)
	p.ProofURL = proofURL.String
	p.TransactionID = transactionID.String
	p.ReviewStatus = domain.ReviewStatus(reviewStatus)
	return &p, nil
}
