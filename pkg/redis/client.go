package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/GareBear99/admension/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LedgerChannel is the Pub/Sub channel carrying "ledger generated" notifications.
const LedgerChannel = "admension:ledger.generated"

// Client wraps the Redis client used for collector rate limiting and
// real-time ledger notifications (Pub/Sub).
type Client struct {
	client *redis.Client
	logger *zap.Logger
}

// NewClient creates a new Redis client using environment variables for configuration.
// Environment variables:
//   - REDIS_HOST: Redis host (default: "localhost")
//   - REDIS_PORT: Redis port (default: "6379")
//   - REDIS_PASSWORD: Redis password (default: "")
//   - REDIS_DB: Redis database number (default: "0")
func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("REDIS_HOST", "localhost")
	port := utils.Env("REDIS_PORT", "6379")
	password := utils.Env("REDIS_PASSWORD", "")
	db := utils.EnvInt("REDIS_DB", 0)

	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Connection pool
		PoolSize:     10,
		MinIdleConns: 2,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))

	return &Client{client: rdb, logger: logger}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client.
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// Publish publishes a message to a Redis Pub/Sub channel.
// This is a best-effort operation - errors are logged but not returned
// to prevent notification failures from affecting the settlement run.
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) {
	if err := c.client.Publish(ctx, channel, message).Err(); err != nil {
		c.logger.Warn("Failed to publish Redis message",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

// Subscribe subscribes to one or more Redis Pub/Sub channels.
// The caller is responsible for closing the PubSub object when done.
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.client.Subscribe(ctx, channels...)
}

// Health checks if Redis is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// IncrWindow increments a fixed-window counter, setting the window TTL on first use.
// Returns the counter value after the increment.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr window %s: %w", key, err)
	}
	return incr.Val(), nil
}

// SetBlocked marks a key as blocked for the given duration.
func (c *Client) SetBlocked(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// GetBlocked returns the stored violation count and remaining TTL for a blocked
// key, or (0, 0, nil) when the key is not blocked.
func (c *Client) GetBlocked(ctx context.Context, key string) (int64, time.Duration, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	return val, ttl, nil
}
