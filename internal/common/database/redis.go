// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pv-query-router/internal/common/config"
)

// RedisClient is the connection behind the redis session store.
type RedisClient struct {
	client *redis.Client
}

// NewRedis creates the client without connecting; call Ping to check the
// server is reachable.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	return &RedisClient{client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   "pv-query-router",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		// Session appends run WATCH/MULTI per request, one connection each.
		PoolSize:     20,
		MinIdleConns: 2,
	})}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}

func (c *RedisClient) GetClient() *redis.Client {
	return c.client
}
