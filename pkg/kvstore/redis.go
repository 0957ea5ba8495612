package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis store.
type RedisOptions struct {
	Client redis.UniversalClient
	// KeyPrefix is prepended to every key as "prefix:key".
	KeyPrefix string
	// TTL applies to every Set. Zero or less stores without expiry.
	TTL time.Duration
}

// Redis is a Store backed by Redis strings.
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedis creates a Redis store.
func NewRedis(opts RedisOptions) *Redis {
	return &Redis{client: opts.Client, keyPrefix: opts.KeyPrefix, ttl: opts.TTL}
}

func (r *Redis) key(k string) string {
	if r.keyPrefix != "" {
		return r.keyPrefix + ":" + k
	}
	return k
}

// Get returns the value for key, or ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	k := r.key(key)
	s, err := r.client.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("kvstore get %s: %w", k, err)
	}
	return s, nil
}

// Set stores value under key.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	k := r.key(key)
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, k, value, ttl).Err(); err != nil {
		return fmt.Errorf("kvstore set %s: %w", k, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	k := r.key(key)
	if err := r.client.Del(ctx, k).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("kvstore delete %s: %w", k, err)
	}
	return nil
}
