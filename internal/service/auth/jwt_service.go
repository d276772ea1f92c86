// Package auth validates the bearer tokens issued by the external identity
// service. The principal id of a request is the token's subject claim.
package auth

import (
	"context"
	"time"
)

// AccessTokenType is the only token type accepted by ValidateToken. Tokens
// without a type claim are treated as access tokens.
const AccessTokenType = "access"

// JWTService defines operations for validating and minting JWT access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is principalID.
	// Production tokens come from the identity service; this exists for
	// local development and operator tooling.
	GenerateToken(ctx context.Context, principalID string) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns an error if validation fails (expired, invalid signature, no subject, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated claims of an access token.
type Claims struct {
	// Subject is the principal id the token was issued for.
	Subject   string    `json:"sub,omitempty"`
	TokenType string    `json:"type,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// PrincipalID returns the id of the authenticated principal.
func (c *Claims) PrincipalID() string {
	return c.Subject
}
