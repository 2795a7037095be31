package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry makes a single attempt so an unreachable server falls
// through to the next backend without delay.
var DefaultRetry = RetryConfig{
	MaxAttempts: 1,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// Retry runs op until it succeeds, with exponential backoff between
// attempts.
func Retry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		fmt.Printf("[DB] Attempt %d/%d failed: %v — retrying in %s\n",
			attempt, cfg.MaxAttempts, lastErr, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	if cfg.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

// ConnectRetry wraps Connect in Retry; each attempt gets its own timeout.
func ConnectRetry(ctx context.Context, dsn string, timeout time.Duration, rc RetryConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := Retry(ctx, rc, func(ctx context.Context) error {
		p, err := Connect(ctx, dsn, timeout)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}
