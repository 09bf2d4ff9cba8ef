package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "dev-secret-key-change-in-production", cfg.JWTSigningKey)
	assert.Equal(t, "waveerchat_client_123", cfg.ClientID)
	assert.Equal(t, "waveerchat_secret_xyz", cfg.ClientSecret)
	assert.Equal(t, 10*time.Minute, cfg.StateTTL)
	assert.Equal(t, 10*time.Minute, cfg.AuthCodeTTL)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.SweepEnabled)
}

func Test_LoadOverrides(t *testing.T) {
	t.Setenv("OAUTH_GATEWAY_ADDR", ":9090")
	t.Setenv("STATE_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("SWEEP_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.StateTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SweepEnabled)
}

func Test_LoadRequiresSigningKeyInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
}

func Test_LoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("AUTH_CODE_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifetimes")
}
