package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

const DefaultRedisPrefix = "storefront:"

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(c context.Context, key string) (string, error) {
	v, err := s.client.Get(c, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", inErrors.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed getting key=%s from redis with error=%w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(c context.Context, key string, value string) error {
	if err := s.client.Set(c, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed setting key=%s to redis with error=%w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(c context.Context, key string) error {
	if err := s.client.Del(c, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed removing key=%s from redis with error=%w", key, err)
	}
	return nil
}
