package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func exerciseStore(t *testing.T, store Store) {
	c := testContext()

	_, err := store.Get(c, KeyCart)
	assert.ErrorIs(t, err, inErrors.ErrKeyNotFound, "missing key should return ErrKeyNotFound")

	require.NoError(t, store.Set(c, KeyCart, `[]`))
	require.NoError(t, store.Set(c, KeyToken, "token"))

	actual, err := store.Get(c, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, actual)

	require.NoError(t, store.Set(c, KeyCart, `[{"quantity":1}]`))
	actual, err = store.Get(c, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, actual, "last writer should win")

	require.NoError(t, store.Remove(c, KeyCart))
	_, err = store.Get(c, KeyCart)
	assert.ErrorIs(t, err, inErrors.ErrKeyNotFound)

	require.NoError(t, store.Remove(c, KeyCart), "removing a missing key should not fail")

	token, err := store.Get(c, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token", token, "other keys should be untouched")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storefront.json")
	exerciseStore(t, NewFileStore(path))

	reopened := NewFileStore(path)
	token, err := reopened.Get(testContext(), KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token", token, "values should survive a new FileStore on the same path")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewFileStore(path).Get(testContext(), KeyCart)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, inErrors.ErrKeyNotFound)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		expectedErr error
	}{
		{name: "given memory driver should return memory store", driver: config.StorageMemory},
		{name: "given file driver should return file store", driver: config.StorageFile},
		{name: "given unknown driver should return error", driver: "sqlite", expectedErr: inErrors.ErrUnknownStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{Storage: config.Storage{
				Driver: tt.driver,
				Path:   filepath.Join(t.TempDir(), "storefront.json"),
			}}
			store, closeFunc, err := New(testContext(), cfg)
			require.NotNil(t, closeFunc)
			defer closeFunc()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, store)
		})
	}
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := testContext()

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	client := redis.NewClient(opt)
	defer client.Close()
	if err := client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	exerciseStore(t, NewRedisStore(client, DefaultRedisPrefix))

	raw, err := client.Get(c, DefaultRedisPrefix+KeyToken).Result()
	require.NoError(t, err)
	assert.Equal(t, "token", raw, "keys should be namespaced with the prefix")
}
