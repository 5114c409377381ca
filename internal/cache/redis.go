// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client holds the Redis client
type Client struct {
	Redis *redis.Client
}

// NewClient parses redisURL and pings the server.
func NewClient(ctx context.Context, redisURL string, log zerolog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	log.Info().Msg("✅ Redis connected")
	return &Client{Redis: client}, nil
}

func (c *Client) Close() error {
	return c.Redis.Close()
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return c.Redis.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Redis.Del(ctx, keys...).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.Redis.Exists(ctx, key).Result()
	return count > 0, err
}

// IncrWindow counts a hit against key and returns the count so far and the
// time left in the window. The first hit starts the window.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	n, err := c.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := c.Redis.PExpire(ctx, key, window).Err(); err != nil {
			return n, 0, err
		}
		return n, window, nil
	}

	ttl, err := c.Redis.PTTL(ctx, key).Result()
	if err != nil {
		return n, 0, err
	}
	if ttl < 0 {
		// a crash between INCR and PEXPIRE left the key without an expiry
		if err := c.Redis.PExpire(ctx, key, window).Err(); err != nil {
			return n, 0, err
		}
		ttl = window
	}
	return n, ttl, nil
}
