// Package retry is the caller-side retry helper. The exchange pipeline never
// retries on its own; callers decide with apperr.IsRetryable.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// WithRetry runs fn up to attempts times with exponential backoff and jitter.
// It stops early when fn succeeds, when retryable reports false for the
// returned error, or when ctx is done. A nil retryable retries every error.
func WithRetry(
	ctx context.Context,
	attempts int,
	baseDelay time.Duration,
	retryable func(error) bool,
	fn func(attempt int) error,
) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error

	for i := 1; i <= attempts; i++ {
		// Stop if the context is already done
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = fn(i)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}

		// No sleep after the last attempt
		if i == attempts {
			break
		}

		// Exponential backoff with jitter
		sleep := baseDelay * time.Duration(1<<uint(i-1))
		var jitter time.Duration
		if baseDelay > 0 {
			jitter = time.Duration(rand.Int63n(int64(baseDelay)))
		}

		select {
		case <-time.After(sleep + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
