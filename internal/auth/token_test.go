package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub-io/identity-api/internal/auth"
	"github.com/userhub-io/identity-api/internal/user"
)

var (
	tokenKey      = []byte("0123456789abcdef0123456789abcdef")
	otherTokenKey = []byte("fedcba9876543210fedcba9876543210")
)

// tokenBackends builds each TokenService implementation with the given key so
// every case runs against both wire formats.
func tokenBackends(t *testing.T, key []byte) map[string]auth.TokenService {
	t.Helper()

	pasetoSvc, err := auth.NewPasetoService(key)
	require.NoError(t, err)
	jwtSvc, err := auth.NewJWTService(key)
	require.NoError(t, err)

	return map[string]auth.TokenService{
		"paseto": pasetoSvc,
		"jwt":    jwtSvc,
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	userID := uuid.New()

	for name, svc := range tokenBackends(t, tokenKey) {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.CreateToken(userID, "ana@x.com", user.RoleAdmin, time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, tok)

			claims, err := svc.VerifyToken(tok)
			require.NoError(t, err)

			assert.Equal(t, userID.String(), claims.UserID)
			assert.Equal(t, "ana@x.com", claims.Email)
			assert.Equal(t, user.RoleAdmin, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	for name, svc := range tokenBackends(t, tokenKey) {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.CreateToken(uuid.New(), "ana@x.com", user.RoleUser, -2*time.Second)
			require.NoError(t, err)

			_, err = svc.VerifyToken(tok)
			assert.ErrorIs(t, err, auth.ErrExpiredToken)
		})
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	verifiers := tokenBackends(t, otherTokenKey)

	for name, svc := range tokenBackends(t, tokenKey) {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.CreateToken(uuid.New(), "ana@x.com", user.RoleUser, time.Hour)
			require.NoError(t, err)

			_, err = verifiers[name].VerifyToken(tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestTokenService_Malformed(t *testing.T) {
	for name, svc := range tokenBackends(t, tokenKey) {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyToken("garbage")
			assert.ErrorIs(t, err, auth.ErrMalformedToken)
		})
	}
}

func TestTokenService_KeyLength(t *testing.T) {
	_, err := auth.NewPasetoService([]byte("short"))
	assert.Error(t, err)

	_, err = auth.NewJWTService([]byte("short"))
	assert.Error(t, err)
}
