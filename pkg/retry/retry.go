package retry

import (
	"context"
	"time"

	"snackindex/pkg/errors"
)

// Policy describes a retry schedule with exponential backoff. One policy is
// shared by every call site that needs retries; which errors are worth
// retrying is decided per call site via the Retryable predicate.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one
	MaxAttempts int

	// InitialDelay is the sleep before the second attempt
	InitialDelay time.Duration

	// Multiplier scales the delay after every failed attempt
	Multiplier float64

	// Retryable reports whether an error should be retried.
	// A nil predicate retries every error.
	Retryable func(error) bool

	// Sleep blocks for the given duration. Overridable in tests;
	// nil falls back to a context-aware time.After wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do executes fn according to the policy. It returns nil on the first
// successful attempt, the original error when it is not retryable, and a
// wrapped error when all attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		// No sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		if err := p.sleep(ctx, delay); err != nil {
			return errors.Wrap(err, "retry cancelled")
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return errors.Wrapf(lastErr, "max attempts (%d) exceeded", maxAttempts)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
