package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Provider-specific validation errors
var (
	// ErrProviderIDEmpty is returned when a provider ID is empty or nil.
	ErrProviderIDEmpty = errors.New("provider ID cannot be empty")

	// ErrCapacityInvalid is returned when capacity values violate
	// 0 <= capacity_used <= capacity_max.
	ErrCapacityInvalid = errors.New("invalid provider capacity")
)

// Provider is the dispatchable view of a service provider. Profile data
// (name, photos, reviews) lives with external collaborators; dispatch only
// needs identity, service type and active status.
type Provider struct {
	ID          uuid.UUID   `json:"id"`
	ServiceType ServiceType `json:"service_type"`
	Active      bool        `json:"active"`
}

// ProviderCapacity tracks how many concurrent engagements a provider can
// hold within one service window (a day). capacity_used moves by exactly one
// on offer acceptance and is released on cancellation or completion.
type ProviderCapacity struct {
	ProviderID   uuid.UUID `json:"provider_id"`
	Day          string    `json:"day"` // service window, formatted 2006-01-02
	CapacityMax  int       `json:"capacity_max"`
	CapacityUsed int       `json:"capacity_used"`
}

// Validate checks the capacity invariant 0 <= used <= max.
func (c *ProviderCapacity) Validate() error {
	if c.ProviderID == uuid.Nil {
		return ErrProviderIDEmpty
	}
	if c.CapacityUsed < 0 || c.CapacityMax < 0 || c.CapacityUsed > c.CapacityMax {
		return ErrCapacityInvalid
	}
	return nil
}

// HasRoom reports whether the provider can take one more engagement.
func (c *ProviderCapacity) HasRoom() bool {
	return c.CapacityUsed < c.CapacityMax
}
