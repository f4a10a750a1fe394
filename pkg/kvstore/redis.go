package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/redis/go-redis/v9"
)

// RedisCommands is the subset of the go-redis client the backend needs.
type RedisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis persists values as plain Redis strings under an optional namespace.
type Redis struct {
	rdb        RedisCommands
	namespace  string
	expiration time.Duration
}

// NewRedis creates a Redis backend. Keys are stored as "<namespace>:<key>"
// when namespace is set; expiration 0 keeps values forever.
func NewRedis(rdb RedisCommands, namespace string, expiration time.Duration) *Redis {
	return &Redis{
		rdb:        rdb,
		namespace:  namespace,
		expiration: expiration,
	}
}

func (r *Redis) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "RedisBackend.Get")
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordBackendOperation("redis", "get", time.Since(start).Seconds()) }()

	value, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	ctx, span := tracing.StartSpan(ctx, "RedisBackend.Set")
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordBackendOperation("redis", "set", time.Since(start).Seconds()) }()

	if err := r.rdb.Set(ctx, r.key(key), value, r.expiration).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
