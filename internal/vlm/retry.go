package vlm

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// RetryConfig holds retry behavior for model calls. Rate limits and
// transient gateway failures surface as plain errors from the underlying
// client, so every error is considered retryable up to MaxRetries.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

func (rc RetryConfig) backoff(attempt int) time.Duration {
	d := float64(rc.InitialBackoff) * math.Pow(2, float64(attempt))
	if d > float64(rc.MaxBackoff) {
		d = float64(rc.MaxBackoff)
	}
	return time.Duration(d)
}

// do runs fn with exponential backoff between attempts, honoring context
// cancellation both before attempts and during backoff waits.
func (rc RetryConfig) do(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == rc.MaxRetries {
			break
		}

		wait := rc.backoff(attempt)
		slog.Warn("model call failed, retrying",
			"attempt", attempt+1,
			"max_retries", rc.MaxRetries,
			"backoff", wait.String(),
			"error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", lastErr
}
