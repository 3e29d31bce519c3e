package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStorage keeps session keys in Redis under a per-profile prefix, so several
// CLI profiles can share one instance.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage connects using a redis:// URL. A zero ttl keeps keys forever.
func NewRedisStorage(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session.NewRedisStorage: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("session.NewRedisStorage: ping: %w", err)
	}
	return &RedisStorage{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (r *RedisStorage) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session.RedisStorage.Get: %w", err)
	}
	return v, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("session.RedisStorage.Set: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session.RedisStorage.Delete: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}
