package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// KeyPrefix namespaces every key written by the API.
const KeyPrefix = "colegio:"

// Repository stores JSON encoded read views in Redis. A repository without a
// client behaves as an always-empty cache.
type Repository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRepository constructs a cache repository. client may be nil.
func NewRepository(client *redis.Client, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{client: client, logger: logger}
}

// Available reports whether a Redis client is attached.
func (r *Repository) Available() bool {
	return r != nil && r.client != nil
}

// Get retrieves and unmarshals the cached value into dest.
func (r *Repository) Get(ctx context.Context, key string, dest interface{}) error {
	if !r.Available() {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it with the given TTL.
func (r *Repository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes cached entries matching a glob pattern and returns
// how many keys were dropped.
func (r *Repository) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if !r.Available() {
		return 0, nil
	}

	deleted := 0
	iter := r.client.Scan(ctx, 0, KeyPrefix+pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return deleted, fmt.Errorf("redis delete %s: %w", key, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}

	r.logger.Debug("cache keys deleted", zap.String("pattern", pattern), zap.Int("count", deleted))
	return deleted, nil
}

// Ping checks the connection. Without a client there is nothing to reach.
func (r *Repository) Ping(ctx context.Context) error {
	if !r.Available() {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection if present.
func (r *Repository) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}
