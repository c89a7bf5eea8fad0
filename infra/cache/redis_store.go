// Package cache provides the Redis and in-memory implementations of the
// shared key-value store.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chaptertools/treasury/pkg/cache"
	"github.com/chaptertools/treasury/pkg/config"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements cache.Store on a Redis client. Every round-trip is
// bounded by opTimeout so a cache outage degrades reads instead of hanging
// them.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewRedisStore builds a RedisStore from the Redis config.
func NewRedisStore(
	cfg *config.Redis,
	opTimeout time.Duration,
	logger *slog.Logger,
) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	return &RedisStore{
		client:    redis.NewClient(opt),
		prefix:    cfg.KeyPrefix,
		opTimeout: opTimeout,
		logger:    logger,
	}, nil
}

// Client exposes the underlying connection for components sharing the same
// store, such as the rate limiter.
func (r *RedisStore) Client() *redis.Client { return r.client }

// Ping reports connectivity for health checks.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) key(key string) string { return r.prefix + key }

func (r *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// Get implements cache.Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		r.logger.Error("redis cache get error", "key", key, "error", err)
		return nil, err
	}
	return val, nil
}

// Set implements cache.Store.
func (r *RedisStore) Set(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Error("redis cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete implements cache.Store. Absent keys delete as a no-op.
func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		r.logger.Error("redis cache delete error", "keys", keys, "error", err)
		return err
	}
	return nil
}

// Flush implements cache.Store.
func (r *RedisStore) Flush(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

var _ cache.Store = (*RedisStore)(nil)
