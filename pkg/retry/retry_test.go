package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoWithResult_SucceedsOnThirdAttempt(t *testing.T) {
	var delays []time.Duration
	cfg := SitemapConfig()
	cfg.Sleep = recordingSleep(&delays)

	calls := 0
	result, err := DoWithResult(context.Background(), cfg, "fetch projects", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDoWithResult_GivesUpAfterMaxAttempts(t *testing.T) {
	var delays []time.Duration
	cfg := SitemapConfig()
	cfg.Sleep = recordingSleep(&delays)

	upstream := errors.New("status 503")
	calls := 0
	_, err := DoWithResult(context.Background(), cfg, "fetch blog-posts", func() (int, error) {
		calls++
		return 0, upstream
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2)
}

func TestDoWithResult_NonRetryable(t *testing.T) {
	var delays []time.Duration
	cfg := SitemapConfig()
	cfg.Sleep = recordingSleep(&delays)
	cfg.RetryableErrors = func(error) bool { return false }

	calls := 0
	_, err := DoWithResult(context.Background(), cfg, "op", func() (int, error) {
		calls++
		return 0, errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDoWithResult_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := SitemapConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	_, err := DoWithResult(ctx, cfg, "op", func() (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		attempt  int
		expected time.Duration
	}{
		{
			name:     "linear first attempt",
			config:   SitemapConfig(),
			attempt:  1,
			expected: time.Second,
		},
		{
			name:     "linear second attempt",
			config:   SitemapConfig(),
			attempt:  2,
			expected: 2 * time.Second,
		},
		{
			name:     "exponential third attempt",
			config:   Config{InitialDelay: 100 * time.Millisecond, Multiplier: 2, Strategy: Exponential},
			attempt:  3,
			expected: 400 * time.Millisecond,
		},
		{
			name:     "exponential capped",
			config:   Config{InitialDelay: time.Second, Multiplier: 10, MaxDelay: 3 * time.Second, Strategy: Exponential},
			attempt:  4,
			expected: 3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calculateDelay(tt.attempt, tt.config))
		})
	}
}
