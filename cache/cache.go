package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache memoizes values in redis. A nil *Cache, or one built without an
// address, simply calls through.
type Cache struct {
	client *redis.Client
}

// New connects lazily to addr. An empty addr disables caching.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return &Cache{}
	}
	return NewWithOptions(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewWithOptions wraps a client built from opts
func NewWithOptions(opts *redis.Options) *Cache {
	return &Cache{client: redis.NewClient(opts)}
}

// Enabled reports whether values are actually stored
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Memoize returns the cached value for key or computes it with fn and stores
// it for ttl. Redis failures are never fatal: a failed read falls through to
// fn and a failed write is dropped. Errors from fn are not cached.
func Memoize[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if !c.Enabled() {
		return fn()
	}

	var result T
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		if jsonErr := json.Unmarshal(cached, &result); jsonErr == nil {
			return result, nil
		}
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		c.client.Set(ctx, key, data, ttl)
	}

	return result, nil
}
