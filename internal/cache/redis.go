package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores entries in Redis so several server instances can
// share one cache.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend connects to the given address.
func NewRedisBackend(addr, password string, db int) *RedisBackend {
	return &RedisBackend{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, data []byte, retention time.Duration) error {
	return r.rdb.Set(ctx, key, data, retention).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	return r.rdb.FlushDB(ctx).Err()
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}
