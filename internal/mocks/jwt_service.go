package mocks

import (
	"context"
	"strings"

	"github.com/phrazzld/deckgen-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, principalID string) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

var _ auth.JWTService = (*MockJWTService)(nil)

// NewPrincipalTokenMock returns a mock that accepts tokens of the form
// "token-<principal>" and rejects anything else with auth.ErrInvalidToken.
func NewPrincipalTokenMock() *MockJWTService {
	return &MockJWTService{
		ValidateTokenFn: func(_ context.Context, tokenString string) (*auth.Claims, error) {
			principal, ok := strings.CutPrefix(tokenString, "token-")
			if !ok || principal == "" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{Subject: principal, TokenType: auth.AccessTokenType}, nil
		},
		GenerateTokenFn: func(_ context.Context, principalID string) (string, error) {
			return "token-" + principalID, nil
		},
	}
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, principalID string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, principalID)
	}
	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
