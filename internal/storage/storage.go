// Package storage holds the string keyed persistent store the cart and the
// session write through to. Reads and writes are synchronous and the last
// writer wins.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
)

const (
	KeyCart  = "cart"
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is a string keyed, string valued store. Get returns
// errors.ErrKeyNotFound when the key is absent.
type Store interface {
	Get(c context.Context, key string) (string, error)
	Set(c context.Context, key string, value string) error
	Remove(c context.Context, key string) error
}

type CloseFunc func() error

// New builds the store selected by cfg.Storage.Driver. The returned CloseFunc
// releases the backing resources and is never nil.
func New(c context.Context, cfg config.Config) (Store, CloseFunc, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "storage New").
		Str(log.KeyStorageDriver, cfg.Storage.Driver).
		Logger()

	noop := func() error { return nil }
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Debug().Msg("using memory storage")
		return NewMemoryStore(), noop, nil
	case config.StorageFile, "":
		logger.Debug().Str("path", cfg.Storage.Path).Msg("using file storage")
		return NewFileStore(cfg.Storage.Path), noop, nil
	case config.StorageRedis:
		logger = logger.With().Str(log.KeyProcess, "initializing redis client").Logger()
		logger.Debug().Msg("initializing redis client")
		c = logger.WithContext(c)
		client, err := infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			err = fmt.Errorf("failed initializing redis storage with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, noop, err
		}
		logger.Debug().Msg("initialized redis client")
		return NewRedisStore(client, DefaultRedisPrefix), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s", inErrors.ErrUnknownStorage, cfg.Storage.Driver)
	}
}
