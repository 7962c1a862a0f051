package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/user"
)

var (
	// ErrMalformedToken means the token could not even be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidToken means the token was tampered with or signed with a
	// different key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken means the token was valid but its lifetime is over.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims is the identity snapshot carried inside a session token. It is
// captured at issue time and never refreshed mid-session.
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, role user.Role, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
