package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("cache: key not found")

func NewSet[T any](client *redis.Client, prefix string) *Set[T] {
	return &Set[T]{
		client: client,
		prefix: prefix + ":",
	}
}

// Set is a redis-backed, msgpack-encoded cache of values of type T under a common key prefix.
type Set[T any] struct {
	// m is a mutex for MutexGetSet for concurrent prevention
	m sync.Mutex

	client *redis.Client
	prefix string
}

func (c *Set[T]) key(key string) string {
	return c.prefix + key
}

func (c *Set[T]) Get(ctx context.Context, key string, dest *T) error {
	key = c.key(key)
	resp, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("key", key).Msg("failed to get value from redis")
		return err
	}
	if err := msgpack.Unmarshal(resp, dest); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to unmarshal value from msgpack from redis")
		return err
	}
	return nil
}

func (c *Set[T]) Set(ctx context.Context, key string, value *T, expire time.Duration) error {
	key = c.key(key)
	if l := log.Trace(); l.Enabled() {
		l.Str("key", key).Msg("setting value to redis")
	}
	b, err := msgpack.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal value with msgpack")
		return err
	}
	if err := c.client.Set(ctx, key, b, expire).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set value to redis")
		return err
	}
	return nil
}

// MutexGetSet gets value from cache and writes to dest, or if the key does not exist, it executes valueFunc
// serially to compute the value, stores it and writes it to dest. expire is asked for the TTL of every
// computed value; a non-positive TTL serves the value without storing it.
// The first return value is true when the value was computed and false when it came from redis.
// Errors reading from redis are returned as is and valueFunc is not called.
func (c *Set[T]) MutexGetSet(ctx context.Context, key string, dest *T, valueFunc func() (*T, error), expire func(*T) time.Duration) (bool, error) {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	c.m.Lock()
	defer c.m.Unlock()

	// another caller may have filled the key while we were waiting
	if err := c.Get(ctx, key, dest); err == nil {
		return false, nil
	}

	value, err := valueFunc()
	if err != nil {
		log.Error().Err(err).Str("key", c.key(key)).Msg("failed to get value from valueFunc() in MutexGetSet")
		return true, err
	}

	if ttl := expire(value); ttl > 0 {
		if err := c.Set(ctx, key, value, ttl); err != nil {
			// the computed value is still good to serve
			log.Warn().Err(err).Str("key", c.key(key)).Msg("failed to set value to redis in MutexGetSet")
		}
	}

	*dest = *value
	return true, nil
}

func (c *Set[T]) Delete(ctx context.Context, key string) error {
	key = c.key(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete value from redis")
		return err
	}
	return nil
}
