package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Config bounds a retried operation: how many attempts, and how the delay
// between them grows.
type Config struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterEnabled bool
}

// DefaultConfig covers the common case of waiting out a dependency that is
// still starting (ClickHouse, Redis, Temporal).
func DefaultConfig() Config {
	return Config{
		MaxRetries:    10,
		InitialDelay:  2 * time.Second,
		MaxDelay:      60 * time.Second,
		Multiplier:    2.0,
		JitterEnabled: true,
	}
}

// WithBackoff runs fn until it succeeds, the attempt budget is spent, or ctx
// is canceled. The delay grows by cfg.Multiplier each attempt up to MaxDelay,
// with ±15% jitter when enabled.
func WithBackoff(ctx context.Context, cfg Config, logger *zap.Logger, operation string, fn func() error) error {
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after retries",
					zap.String("operation", operation),
					zap.Int("attempts", attempt))
			}
			return nil
		}

		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
		}

		wait := delay
		if cfg.JitterEnabled {
			// ±15% so restarting replicas don't reconnect in lockstep.
			wait += time.Duration((rand.Float64() - 0.5) * 0.3 * float64(delay))
		}

		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("retry_in", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
