package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var keys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "STORAGE", "DATABASE_PATH", "JWT_SECRET", "JWT_ISSUER",
	"TOKEN_TTL", "BCRYPT_COST", "ALLOW_PASSWORD_CHANGE", "CORS_ALLOWED_ORIGINS",
	"AUTH_RATE_PER_MINUTE", "EVENT_RETENTION", "EVENT_PRUNE_SCHEDULE",
}

// clearEnv unsets every key Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Production())
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "./quill.db", cfg.DatabasePath)
	assert.Equal(t, devSecret, cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.True(t, cfg.AllowPasswordChange)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20, cfg.AuthRatePerMinute)
	assert.Equal(t, 720*time.Hour, cfg.EventRetention)
	assert.Equal(t, "@hourly", cfg.EventPruneSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("ALLOW_PASSWORD_CHANGE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("EVENT_PRUNE_SCHEDULE", "*/5 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.True(t, cfg.Production())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.AllowPasswordChange)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "*/5 * * * *", cfg.EventPruneSchedule)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port not a number", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"unknown storage", "STORAGE", "postgres"},
		{"bad ttl", "TOKEN_TTL", "forever"},
		{"negative ttl", "TOKEN_TTL", "-1h"},
		{"bcrypt too cheap", "BCRYPT_COST", "2"},
		{"bad bool", "ALLOW_PASSWORD_CHANGE", "maybe"},
		{"zero rate", "AUTH_RATE_PER_MINUTE", "0"},
		{"bad retention", "EVENT_RETENTION", "a month"},
		{"bad schedule", "EVENT_PRUNE_SCHEDULE", "every tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
