package httputil

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/shawnoster/bookcover-wallpaper/pkg/errors"
)

// Defaults used by [RetryWithBackoff].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second

	// maxRateLimitWait caps how long a Retry-After header can stall a retry.
	maxRateLimitWait = 30 * time.Second
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// It retries errors wrapped with [RetryableError] and rate-limit errors;
// other errors are returned immediately. The delay doubles after each
// failed attempt, except that a rate-limit error carrying a Retry-After
// hint waits for that long instead (capped at 30s).
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			wait := delay
			if hint := retryAfter(lastErr); hint > 0 {
				wait = hint
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] with sensible
// defaults: 3 attempts with 1 second initial delay (doubling each retry).
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}

func isRetryable(err error) bool {
	if errors.As(err, new(*RetryableError)) {
		return true
	}
	return errors.As(err, new(*apperrors.RateLimitedError))
}

func retryAfter(err error) time.Duration {
	var rl *apperrors.RateLimitedError
	if !errors.As(err, &rl) || rl.RetryAfter <= 0 {
		return 0
	}
	return min(time.Duration(rl.RetryAfter)*time.Second, maxRateLimitWait)
}
