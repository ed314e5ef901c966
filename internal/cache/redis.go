package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const verdictPrefix = "gofactcheck:verdict:"

// RedisStore keeps verdicts in Redis with a TTL, for deployments where
// several instances should share one cache.
type RedisStore struct {
	Client *redis.Client
	// TTL for saved entries; zero means no expiry.
	TTL time.Duration
}

// NewRedisStore dials Redis from a URL such as redis://host:6379/0.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{Client: redis.NewClient(opt), TTL: ttl}, nil
}

func (c *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.Client.Get(ctx, verdictPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		// Treat a flaky Redis as a cache miss.
		return nil, false, nil
	}
	return b, true, nil
}

func (c *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return c.Client.Set(ctx, verdictPrefix+key, data, c.TTL).Err()
}

// Ping verifies connectivity at startup.
func (c *RedisStore) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisStore) Close() error {
	return c.Client.Close()
}
