package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestJWTService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60}, now)
	require.NoError(t, err)
	return svc
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name    string
		setup   func(t *testing.T) (*hmacJWTService, string)
		wantErr error
	}{
		{
			name: "valid token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				svc := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })
				token, err := svc.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "expired token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				later := newTestJWTService(t, testSecret, func() time.Time { return fixedTime.Add(2 * time.Hour) })
				return later, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "expired within clock skew",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				later := newTestJWTService(t, testSecret, func() time.Time {
					return fixedTime.Add(time.Hour + time.Minute)
				})
				return later, token
			},
		},
		{
			name: "not yet valid",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestJWTService(t, testSecret, func() time.Time { return fixedTime.Add(10 * time.Minute) })
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "wrong secret",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestJWTService(t, "wrong-secret-that-is-long-enough-for-testing", func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				return newTestJWTService(t, testSecret, time.Now), "not.a.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				return newTestJWTService(t, testSecret, time.Now), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong token type",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				svc := newTestJWTService(t, testSecret, func() time.Time { return fixedTime })
				token, err := svc.generate(context.Background(), userID, "refresh", fixedTime.Add(time.Hour))
				require.NoError(t, err)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "unexpected signing method",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				claims := jwtCustomClaims{
					UserID:    userID,
					TokenType: "access",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tc.setup(t)

			claims, err := svc.ValidateToken(context.Background(), token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestNewJWTServiceValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 5})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
