// Package cache short-circuits repeated annotation requests by their client supplied
// transaction id.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/getzep/nlp-annotator-api/config"
)

// Store is a byte store with expiring keys. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var _ Store = &RedisStore{}

// RedisStore keeps cached responses in Redis under "<prefix>.<key>".
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// pingTimeout bounds the connection check made when the store is created.
const pingTimeout = 5 * time.Second

// NewRedisStore creates a store for the configured Redis URL. Only a malformed URL is an
// error. An unreachable server is logged and the store is returned anyway: the client
// reconnects on use and failed lookups and stores are treated as misses.
func NewRedisStore(ctx context.Context, cfg config.RedisCacheConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithField("addr", opts.Addr).WithError(err).
			Warn("redis cache is unreachable, requests are computed until it comes back")
	}
	return NewRedisStoreWithClient(client, cfg.Prefix, cfg.TTL), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "." + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
