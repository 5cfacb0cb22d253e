package auth

import (
	"context"
)

// MockJWTService is a configurable JWTService for tests. Handlers and
// middleware are exercised against it without minting real tokens.
type MockJWTService struct {
	// ValidateTokenFn is called by ValidateToken when set.
	ValidateTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

// Ensure MockJWTService implements JWTService interface
var _ JWTService = (*MockJWTService)(nil)

// ValidateToken implements JWTService.ValidateToken.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}
