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

// SafetyStore implements the store.SafetyStore interface
// using a PostgreSQL database as the storage backend.
type SafetyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSafetyStore creates a new PostgreSQL implementation of the SafetyStore
// interface. If logger is nil, a default logger will be used.
func NewSafetyStore(db store.DBTX, logger *slog.Logger) *SafetyStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SafetyStore{
		db:     db,
		logger: logger.With(slog.String("component", "safety_store")),
	}
}

// Ensure SafetyStore implements store.SafetyStore
var _ store.SafetyStore = (*SafetyStore)(nil)

// CreateContact implements store.SafetyStore.CreateContact.
func (s *SafetyStore) CreateContact(ctx context.Context, contact *domain.EmergencyContact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emergency_contacts (id, owner_id, name, phone, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Phone,
		contact.CreatedAt,
	)
	return mapError(err)
}

// GetContact implements store.SafetyStore.GetContact.
func (s *SafetyStore) GetContact(ctx context.Context, id uuid.UUID) (*domain.EmergencyContact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, phone, created_at
		FROM emergency_contacts
		WHERE id = $1
	`, id)

	var c domain.EmergencyContact
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrContactNotFound
		}
		return nil, mapError(err)
	}
	return &c, nil
}

// ListContactsByOwner implements store.SafetyStore.ListContactsByOwner.
func (s *SafetyStore) ListContactsByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.EmergencyContact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, phone, created_at
		FROM emergency_contacts
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	out := make([]*domain.EmergencyContact, 0)
	for rows.Next() {
		var c domain.EmergencyContact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// DeleteContact implements store.SafetyStore.DeleteContact.
func (s *SafetyStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrContactNotFound
	}
	return nil
}

// CreateShareToken implements store.SafetyStore.CreateShareToken.
func (s *SafetyStore) CreateShareToken(ctx context.Context, token *domain.SafetyShareToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO safety_share_tokens (token, booking_id, owner_id, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		token.Token,
		token.BookingID,
		token.OwnerID,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return mapError(err)
}

// GetShareToken implements store.SafetyStore.GetShareToken.
func (s *SafetyStore) GetShareToken(ctx context.Context, token string) (*domain.SafetyShareToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, booking_id, owner_id, expires_at, created_at
		FROM safety_share_tokens
		WHERE token = $1
	`, token)

	var t domain.SafetyShareToken
	if err := row.Scan(&t.Token, &t.BookingID, &t.OwnerID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrShareTokenNotFound
		}
		return nil, mapError(err)
	}
	return &t, nil
}

// CreateSOSEvent implements store.SafetyStore.CreateSOSEvent.
func (s *SafetyStore) CreateSOSEvent(ctx context.Context, event *domain.SOSEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sos_events (id, booking_id, owner_id, latitude, longitude, triggered_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		event.ID,
		event.BookingID,
		event.OwnerID,
		event.Latitude,
		event.Longitude,
		event.TriggeredAt,
	)
	return mapError(err)
}
