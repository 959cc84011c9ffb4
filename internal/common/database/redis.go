package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-assessment-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize     = 10
	defaultRedisMinIdleConns = 2
)

// RedisClient holds the connection used for submission keys.
type RedisClient struct {
	client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultRedisPoolSize
	}
	minIdle := cfg.MinIdleConns
	if minIdle <= 0 || minIdle > poolSize {
		minIdle = defaultRedisMinIdleConns
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
	})

	return &RedisClient{client: rdb}, nil
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

// Submissions exposes the command set the duplicate-submission guard needs.
func (c *RedisClient) Submissions() redis.Cmdable {
	return c.client
}
