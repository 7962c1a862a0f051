package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_KEY", testTokenKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.TrustedOrigins)
	assert.Equal(t, TokenBackendPaseto, cfg.Auth.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.True(t, cfg.Database.MigrateOnStart)
}

func TestLoad_TokenKeyLength(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "missing", key: "", wantErr: true},
		{name: "too short", key: "short", wantErr: true},
		{name: "33 bytes", key: testTokenKey + "x", wantErr: true},
		{name: "exactly 32 bytes", key: testTokenKey, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOKEN_KEY", tt.key)

			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_TokenBackend(t *testing.T) {
	t.Setenv("TOKEN_KEY", testTokenKey)

	t.Run("jwt accepted", func(t *testing.T) {
		t.Setenv("TOKEN_BACKEND", "jwt")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, TokenBackendJWT, cfg.Auth.Backend)
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("TOKEN_BACKEND", "opaque")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.example.com", Port: "5432",
		User: "app", Password: "pw", DBName: "identity", SSLMode: "require",
	}

	assert.Equal(t,
		"host=db.example.com port=5432 user=app password=pw dbname=identity sslmode=require",
		cfg.ConnectionString())

	cfg.ChannelBinding = "require"
	assert.Contains(t, cfg.ConnectionString(), "channel_binding=require")
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("TRUSTED_ORIGINS", "https://a.com, https://b.com ,")

	got := getSliceEnv("TRUSTED_ORIGINS", nil)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, got)
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	assert.Equal(t, 30*time.Second, getDurationEnv("SERVER_READ_TIMEOUT", time.Second))

	t.Setenv("SERVER_READ_TIMEOUT", "not-a-number")
	assert.Equal(t, time.Second, getDurationEnv("SERVER_READ_TIMEOUT", time.Second))
}
