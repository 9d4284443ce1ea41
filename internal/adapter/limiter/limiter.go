// Package limiter counts password attempts per key in fixed time windows.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lzy:attempts:"

// RedisLimiter allows at most limit calls per key within each window.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	const op = "adapter.limiter.RedisLimiter.Allow"

	var incr *redis.IntCmd

	// SET NX EX opens the window on the first attempt; INCR keeps the TTL.
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, keyPrefix+key, 0, l.window)
		incr = pipe.Incr(ctx, keyPrefix+key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s: failed to count attempt: %w", op, err)
	}

	return incr.Val() <= l.limit, nil
}

// NopLimiter allows every attempt. It is used when Redis is not configured.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "adapter.limiter.NewRedisClient"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return client, nil
}
