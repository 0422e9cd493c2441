package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/studio-interiors/site-server/pkg/logger"
	"go.uber.org/zap"
)

// Strategy selects how the delay grows between attempts
type Strategy int

const (
	// Exponential waits InitialDelay * Multiplier^(attempt-1)
	Exponential Strategy = iota
	// Linear waits InitialDelay * attempt
	Linear
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of calls, including the first one
	MaxAttempts int
	// InitialDelay is the delay after the first failed attempt
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts; zero means no cap
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases (Exponential only)
	Multiplier float64
	Strategy   Strategy
	// Jitter adds +/-25% randomness to delays to prevent thundering herd
	Jitter bool
	// RetryableErrors decides whether an error should be retried
	RetryableErrors func(error) bool
	// Sleep is used between attempts; nil means a context-aware timer
	Sleep SleepFunc
}

// DefaultConfig returns sensible retry defaults
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  4,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Strategy:     Exponential,
		Jitter:       true,
		RetryableErrors: func(err error) bool {
			// By default, retry all errors
			return true
		},
	}
}

// SitemapConfig returns the fixed policy for the sitemap job's CMS fetches:
// three attempts, waiting one second times the attempt number between them.
func SitemapConfig() Config {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.InitialDelay = time.Second
	config.MaxDelay = 0
	config.Strategy = Linear
	config.Jitter = false
	return config
}

// DoWithResult executes the function with retry logic and returns a result
func DoWithResult[T any](ctx context.Context, config Config, operation string, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := config.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}

		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			logger.Warn("Non-retryable error encountered",
				zap.String("operation", operation),
				zap.Error(err))
			return result, err
		}

		// Don't sleep after the last attempt
		if attempt == attempts {
			break
		}

		delay := calculateDelay(attempt, config)

		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := sleep(ctx, delay); err != nil {
			return result, err
		}
	}

	logger.Error("Operation failed after all attempts",
		zap.String("operation", operation),
		zap.Int("max_attempts", attempts),
		zap.Error(lastErr))

	return result, fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}

// calculateDelay returns the wait after the given 1-indexed failed attempt
func calculateDelay(attempt int, config Config) time.Duration {
	var delay float64
	switch config.Strategy {
	case Linear:
		delay = float64(config.InitialDelay) * float64(attempt)
	default:
		delay = float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	}

	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		jitterRange := delay * 0.25
		//nolint:gosec // G404: math/rand is sufficient for retry jitter, crypto/rand not needed
		jitter := (rand.Float64() * 2 * jitterRange) - jitterRange
		delay += jitter
	}

	return time.Duration(delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
