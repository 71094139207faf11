// Package ratelimit implements a Redis-backed fixed-window rate limiter. It
// guards the expensive compliance endpoints (manual checks, report
// generation) against runaway callers.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter checks and counts requests per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Config configures the limiter.
type Config struct {
	Enabled  bool
	RedisURL string
}

type redisLimiter struct {
	client *redis.Client
	logger *logrus.Logger
}

// New creates a limiter. When disabled it returns a noop that always allows.
func New(cfg Config, logger *logrus.Logger) (Limiter, error) {
	if !cfg.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopLimiter{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Rate limiting service initialized")
	return &redisLimiter{client: client, logger: logger}, nil
}

// Allow increments the key's counter and reports whether the caller is still
// under the limit for the current window.
func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipeline := l.client.Pipeline()
	incr := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		l.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incr.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.WithContext(ctx).WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": limit,
		}).Warn("Rate limit exceeded")
	}
	return allowed, nil
}

type noopLimiter struct{}

func (n *noopLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
