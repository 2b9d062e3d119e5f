package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON-encoded values under prefix:key with a fixed TTL.
type Redis[V any] struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis[V any](rdb redis.UniversalClient, prefix string, ttl time.Duration) *Redis[V] {
	return &Redis[V]{
		rdb:    rdb,
		prefix: strings.Trim(prefix, ":"),
		ttl:    ttl,
	}
}

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var value V
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.rdb.Set(ctx, r.key(key), raw, r.ttl).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}
