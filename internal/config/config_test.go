package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOSNAP_MAPS_API_KEY", "key-123")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.Development())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "key-123", cfg.Maps.APIKey)
	assert.Equal(t, "rw", cfg.Maps.Region)
	assert.Equal(t, 2, cfg.Route.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Route.RetryDelay)
	assert.Empty(t, cfg.DB.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Booking.DraftTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GOSNAP_MAPS_API_KEY", "key-123")
	t.Setenv("GOSNAP_ENV", "development")
	t.Setenv("GOSNAP_ROUTE_RETRY_ATTEMPTS", "3")
	t.Setenv("GOSNAP_ROUTE_RETRY_DELAY", "250ms")
	t.Setenv("GOSNAP_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.Development())
	assert.Equal(t, 3, cfg.Route.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Route.RetryDelay)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "http_addr: \":9090\"\nmaps:\n  api_key: file-key\n  region: ug\nbooking:\n  draft_ttl: 2h\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gosnap.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "file-key", cfg.Maps.APIKey)
	assert.Equal(t, "ug", cfg.Maps.Region)
	assert.Equal(t, 2*time.Hour, cfg.Booking.DraftTTL)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GOSNAP_MAPS_API_KEY", "")
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
