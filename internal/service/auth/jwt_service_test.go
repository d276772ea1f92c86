package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestJWTService(t *testing.T, secret string, now func() time.Time) JWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: 60,
	}, WithTimeFunc(now))
	require.NoError(t, err)
	return svc
}

// signRaw signs arbitrary claims with the test secret.
func signRaw(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestNewJWTService_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), "principal-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "principal-42", claims.PrincipalID())
	assert.Equal(t, AccessTokenType, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixedTime }

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, clock)
				token, err := svc.GenerateToken(context.Background(), "user-1")
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "identity service token without type claim",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), signRaw(t, jwt.RegisteredClaims{
					Subject:   "user-1",
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				})
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestJWTService(t, testSecret, clock)
				token, err := gen.GenerateToken(context.Background(), "user-1")
				require.NoError(t, err)
				later := func() time.Time { return fixedTime.Add(2 * time.Hour) }
				return newTestJWTService(t, testSecret, later), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), signRaw(t, jwt.RegisteredClaims{
					Subject:   "user-1",
					NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
				})
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestJWTService(t, testSecret, clock)
				token, err := gen.GenerateToken(context.Background(), "user-1")
				require.NoError(t, err)
				return newTestJWTService(t, "wrong-secret-that-is-long-enough-for-testing", clock), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), signRaw(t, jwt.RegisteredClaims{Subject: "user-1"})
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing subject",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), signRaw(t, jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				})
			},
			wantErr: ErrMissingSubject,
		},
		{
			name: "refresh token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), signRaw(t, jwtCustomClaims{
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-1",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				})
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, clock), ""
			},
			wantErr: ErrMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.PrincipalID())
		})
	}
}
