package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawtrol/pawtrol-api/internal/domain"
)

// SafetyStore defines the interface for emergency contacts, trip-share
// tokens and SOS events.
type SafetyStore interface {
	// CreateContact saves a new emergency contact.
	CreateContact(ctx context.Context, contact *domain.EmergencyContact) error

	// GetContact retrieves a contact by its unique ID.
	// Returns ErrContactNotFound if the contact does not exist.
	GetContact(ctx context.Context, id uuid.UUID) (*domain.EmergencyContact, error)

	// ListContactsByOwner retrieves all contacts for an owner.
	ListContactsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.EmergencyContact, error)

	// DeleteContact removes a contact.
	// Returns ErrContactNotFound if the contact does not exist.
	DeleteContact(ctx context.Context, id uuid.UUID) error

	// CreateShareToken saves a minted trip-share token.
	CreateShareToken(ctx context.Context, token *domain.SafetyShareToken) error

	// GetShareToken retrieves a share token by its opaque value.
	// Returns ErrShareTokenNotFound if the token does not exist.
	GetShareToken(ctx context.Context, token string) (*domain.SafetyShareToken, error)

	// CreateSOSEvent saves a triggered SOS event.
	CreateSOSEvent(ctx context.Context, event *domain.SOSEvent) error
}
