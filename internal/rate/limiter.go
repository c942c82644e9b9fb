package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the failure budget of a [Limiter].
type Config struct {
	// MaxFailures is the number of failures a key may record per window
	// before [Limiter.Check] rejects it.
	MaxFailures int
	Window      time.Duration
	// Prefix namespaces the Redis keys. Defaults to "authstate:lf:".
	Prefix string
}

// Limiter tracks failed attempts per key in fixed Redis windows.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// Validate checks the failure budget.
func (c Config) Validate() error {
	if c.MaxFailures <= 0 {
		return fmt.Errorf("%w: MaxFailures must be > 0", ErrInvalidConfig)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: Window must be > 0", ErrInvalidConfig)
	}
	return nil
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) (*Limiter, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("%w: redis client is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "authstate:lf:"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}, nil
}

// Check returns [ErrRateLimited] once key has used up its failure budget.
func (l *Limiter) Check(ctx context.Context, key string) error {
	count, err := l.Failures(ctx, key)
	if err != nil {
		return err
	}
	if count >= l.config.MaxFailures {
		return ErrRateLimited
	}
	return nil
}

// Fail records one failure for key. It returns [ErrRateLimited] when the
// failure exhausts the budget.
func (l *Limiter) Fail(ctx context.Context, key string) error {
	count, err := l.incrementWithTTL(ctx, l.key(key), l.config.Window)
	if err != nil {
		return err
	}
	if count >= int64(l.config.MaxFailures) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the failure counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the failures recorded for key in the current window.
func (l *Limiter) Failures(ctx context.Context, key string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(k string) string {
	return l.config.Prefix + k
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: only the first hit sets the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
