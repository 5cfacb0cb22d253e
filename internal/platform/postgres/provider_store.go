package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// ProviderStore implements the store.ProviderStore interface
// using a PostgreSQL database as the storage backend.
//
// Capacity reservation and release are single conditional UPDATEs; the
// database serializes concurrent accepts on the capacity row, so
// capacity_used can never overshoot capacity_max.
type ProviderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProviderStore creates a new PostgreSQL implementation of the
// ProviderStore interface. If logger is nil, a default logger will be used.
func NewProviderStore(db store.DBTX, logger *slog.Logger) *ProviderStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProviderStore{
		db:     db,
		logger: logger.With(slog.String("component", "provider_store")),
	}
}

// Ensure ProviderStore implements store.ProviderStore
var _ store.ProviderStore = (*ProviderStore)(nil)

// GetByID implements store.ProviderStore.GetByID.
func (s *ProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, service_type, active
		FROM providers
		WHERE id = $1
	`, id)

	var (
		p           domain.Provider
		serviceType string
	)
	if err := row.Scan(&p.ID, &serviceType, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProviderNotFound
		}
		return nil, mapError(err)
	}
	p.ServiceType = domain.ServiceType(serviceType)
	return &p, nil
}

// ListEligible implements store.ProviderStore.ListEligible.
func (s *ProviderStore) ListEligible(
	ctx context.Context,
	serviceType domain.ServiceType,
	day string,
) ([]*domain.Provider, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.service_type, p.active
		FROM providers p
		JOIN provider_capacity c
		  ON c.provider_id = p.id AND c.day = $2
		WHERE p.active
		  AND p.service_type = $1
		  AND c.capacity_used < c.capacity_max
	`, string(serviceType), day)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	out := make([]*domain.Provider, 0)
	for rows.Next() {
		var (
			p  domain.Provider
			st string
		)
		if err := rows.Scan(&p.ID, &st, &p.Active); err != nil {
			return nil, mapError(err)
		}
		p.ServiceType = domain.ServiceType(st)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// GetCapacity implements store.ProviderStore.GetCapacity.
func (s *ProviderStore) GetCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) (*domain.ProviderCapacity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT provider_id, day, capacity_max, capacity_used
		FROM provider_capacity
		WHERE provider_id = $1 AND day = $2
	`, providerID, day)

	var c domain.ProviderCapacity
	if err := row.Scan(&c.ProviderID, &c.Day, &c.CapacityMax, &c.CapacityUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProviderNotFound
		}
		return nil, mapError(err)
	}
	return &c, nil
}

// ReserveCapacity implements store.ProviderStore.ReserveCapacity.
func (s *ProviderStore) ReserveCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE provider_capacity
		SET capacity_used = capacity_used + 1
		WHERE provider_id = $1 AND day = $2
		  AND capacity_used < capacity_max
	`, providerID, day)
	if err != nil {
		return mapError(err)
	}
	exists, err := s.capacityExists(ctx, providerID, day)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrProviderNotFound)
}

// ReleaseCapacity implements store.ProviderStore.ReleaseCapacity.
func (s *ProviderStore) ReleaseCapacity(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE provider_capacity
		SET capacity_used = capacity_used - 1
		WHERE provider_id = $1 AND day = $2
		  AND capacity_used > 0
	`, providerID, day)
	if err != nil {
		return mapError(err)
	}
	exists, err := s.capacityExists(ctx, providerID, day)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, exists, store.ErrProviderNotFound)
}

func (s *ProviderStore) capacityExists(
	ctx context.Context,
	providerID uuid.UUID,
	day string,
) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_capacity WHERE provider_id = $1 AND day = $2
		)
	`, providerID, day).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}
