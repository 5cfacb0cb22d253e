package store

import (
	"context"

	"github.com/google/uuid"
)

// PetStore is the booking core's read-only view of pet ownership. Pet
// profiles are written by an external collaborator; the core only needs to
// check ownership when a booking is created.
type PetStore interface {
	// BelongsToOwner reports whether the pet exists and belongs to the
	// given owner. Returns ErrPetNotFound if the pet does not exist.
	BelongsToOwner(ctx context.Context, petID, ownerID uuid.UUID) (bool, error)
}
