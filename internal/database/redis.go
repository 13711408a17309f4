package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RedisDialTimeout  = 5 * time.Second
	RedisReadTimeout  = 3 * time.Second
	RedisWriteTimeout = 3 * time.Second
)

// NewRedisClient connects to redisURL. Timeouts not set in the URL fall back
// to the Redis* constants.
func NewRedisClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = RedisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = RedisReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = RedisWriteTimeout
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	logger.Info("redis client ready", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
