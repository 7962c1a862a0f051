package user_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub-io/identity-api/internal/user"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  user.Role
		ok    bool
	}{
		{input: "admin", want: user.RoleAdmin, ok: true},
		{input: "user", want: user.RoleUser, ok: true},
		{input: "Admin", ok: false},
		{input: "superuser", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := user.ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input string
		want  user.Provider
		ok    bool
	}{
		{input: "local", want: user.ProviderLocal, ok: true},
		{input: "google", want: user.ProviderGoogle, ok: true},
		{input: "microsoft", want: user.ProviderMicrosoft, ok: true},
		{input: "github", ok: false},
		{input: "Google", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := user.ParseProvider(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestUser_Sanitized(t *testing.T) {
	original := &user.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "$argon2id$...",
		Role:         user.RoleUser,
		Provider:     user.ProviderLocal,
	}

	clean := original.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, original.ID, clean.ID)
	assert.Equal(t, original.Email, clean.Email)
	assert.Equal(t, "$argon2id$...", original.PasswordHash, "original must be untouched")
}

func TestUser_JSONNeverContainsHash(t *testing.T) {
	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "super-secret-hash",
		Role:         user.RoleUser,
		Provider:     user.ProviderLocal,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Even an unsanitized record must not leak the hash through JSON.
	raw, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "super-secret-hash")
	assert.NotContains(t, string(raw), "password")
}

func TestUser_IsLocal(t *testing.T) {
	local := &user.User{Provider: user.ProviderLocal}
	google := &user.User{Provider: user.ProviderGoogle}

	assert.True(t, local.IsLocal())
	assert.False(t, google.IsLocal())
}
