package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lookupTTL = 24 * time.Hour

// RedisCache memoizes directory lookups (email -> Slack user ID) so
// repeated submissions from the same contact skip the lookup call.
// Stored records are never cached here.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed lookup cache.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "slackuser:",
	}, nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "slackuser:",
	}
}

func (c *RedisCache) key(email string) string {
	return c.prefix + email
}

// Get returns the cached user ID for the email, if any.
func (c *RedisCache) Get(ctx context.Context, email string) (string, bool) {
	userID, err := c.client.Get(ctx, c.key(email)).Result()
	if err != nil {
		return "", false
	}
	return userID, true
}

// Set records a successful lookup.
func (c *RedisCache) Set(ctx context.Context, email, userID string) error {
	if err := c.client.Set(ctx, c.key(email), userID, lookupTTL).Err(); err != nil {
		return fmt.Errorf("cache lookup: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
