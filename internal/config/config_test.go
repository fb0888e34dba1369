package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("missing", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.Application.APIURL)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, 3000, cfg.Application.Port)
	assert.False(t, cfg.Otel.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`application:
  env: development
  api_url: http://api.internal:9000/api
storage:
  driver: redis
cache:
  host: redis.internal
  port: 6380
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yaml"), content, 0o600))
	t.Setenv("STOREFRONT_CACHE_PASSWORD", "secret")
	t.Setenv("STOREFRONT_APPLICATION_PORT", "4000")

	cfg, err := Load("storefront", dir)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, "http://api.internal:9000/api", cfg.Application.APIURL)
	assert.Equal(t, 4000, cfg.Application.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis.internal", cfg.Cache.Host)
	assert.Equal(t, uint16(6380), cfg.Cache.Port)
	assert.Equal(t, "secret", cfg.Cache.Password)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yaml"), []byte("application: ["), 0o600))

	_, err := Load("storefront", dir)

	assert.Error(t, err)
}
