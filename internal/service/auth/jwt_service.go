// Package auth validates bearer tokens issued by the identity collaborator.
// Token issuance, refresh and session management live outside this service;
// only validation happens here.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies what kind of actor a token represents.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// JWTService defines operations for validating JWT authentication tokens.
type JWTService interface {
	// ValidateToken validates the provided access token string and extracts
	// the claims. Returns the claims containing the acting user's identity
	// and role if the token is valid, or an error if validation fails
	// (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	// For owner tokens this is the owner ID; for provider tokens the
	// provider ID.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Role indicates whether the token belongs to an owner, a provider or
	// an admin reviewer.
	Role Role `json:"role,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
