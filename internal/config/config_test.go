package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryStore(t *testing.T) {
	t.Setenv("APP_STORE", "memory")
	t.Setenv("APP_PORT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.App.Store)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "helpdesk:events", cfg.Redis.EventsChannel)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "123", cfg.Seed.Password)
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("APP_STORE", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("APP_STORE", "memory")
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := &Config{
		App:  AppConfig{Env: "production", Store: StoreMemory},
		Auth: AuthConfig{JWTSecret: "dev-secret"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestEnvParsingFallbacks(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))

	t.Setenv("X_INT", "9")
	assert.Equal(t, 9, getEnvAsInt("X_INT", 7))
}
