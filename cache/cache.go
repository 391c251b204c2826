// Package cache holds the read-through cache used by the service layer: the
// Cache contract, its backends, the key naming scheme and the invalidation
// coordinator.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Cache maps a key to a serialized JSON value. Implementations never return
// errors: a backend failure is logged and behaves like a miss.
type Cache interface {
	Has(ctx context.Context, key string) bool
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, keys ...string)
	Close() error
}

const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendRedis  = "redis"
)

type Options struct {
	Backend string
	Size    int // lru only
	Redis   RedisConfig
}

// New builds the backend selected by opts.Backend. The empty backend is memory.
func New(ctx context.Context, opts Options, log zerolog.Logger) (Cache, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendLRU:
		return NewLRU(opts.Size)
	case BackendRedis:
		r := NewRedis(opts.Redis, log)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Fetch returns the value cached under key, or calls load, caches its JSON
// encoding and returns it. Nothing is cached when load fails.
func Fetch[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		// undecodable entries are treated as a miss and overwritten below
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, string(b))
	}
	return v, nil
}
