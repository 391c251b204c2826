package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

// Redis shares the cache between processes. Keys are stored without expiry to
// match the in-process backend.
type Redis struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedis(cfg RedisConfig, log zerolog.Logger) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Redis{rdb: rdb, log: log}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Has(ctx context.Context, key string) bool {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("EXISTS failed, treating as miss")
		return false
	}
	return n == 1
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	s, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("GET failed, treating as miss")
		return "", false
	}
	return s, true
}

func (r *Redis) Set(ctx context.Context, key, value string) {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("SET failed")
	}
}

// Delete retries a failed DEL once. A second failure leaves the keys stale
// until they are overwritten, so it is logged at error level.
func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	err := r.rdb.Del(ctx, keys...).Err()
	if err != nil && ctx.Err() == nil {
		r.log.Warn().Err(err).Strs("keys", keys).Msg("DEL failed, retrying")
		err = r.rdb.Del(ctx, keys...).Err()
	}
	if err != nil {
		r.log.Error().Err(err).Strs("keys", keys).Msg("DEL failed, keys may be stale")
	}
}

func (r *Redis) Close() error { return r.rdb.Close() }
