package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// PetStore implements the store.PetStore interface using a PostgreSQL
// database. The pets table is written by the profile service; this store
// only reads ownership.
type PetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPetStore creates a new PostgreSQL implementation of the PetStore
// interface. If logger is nil, a default logger will be used.
func NewPetStore(db store.DBTX, logger *slog.Logger) *PetStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PetStore{
		db:     db,
		logger: logger.With(slog.String("component", "pet_store")),
	}
}

// Ensure PetStore implements store.PetStore
var _ store.PetStore = (*PetStore)(nil)

// BelongsToOwner implements store.PetStore.BelongsToOwner.
func (s *PetStore) BelongsToOwner(ctx context.Context, petID, ownerID uuid.UUID) (bool, error) {
	var owner uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id FROM pets WHERE id = $1`, petID,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, store.ErrPetNotFound
		}
		return false, mapError(err)
	}
	return owner == ownerID, nil
}
