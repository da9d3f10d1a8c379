package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"snackindex/pkg/errors"
)

// Limiter smooths calls against an external API's per-minute request budget.
// The Reddit and NewsAPI clients wait on one of these before every request;
// the trend service is not guarded here because its limits surface as 429s
// that the signal retries on a fixed backoff schedule instead.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a rate limiter for the named source.
// requestsPerMinute is the maximum sustained request rate.
func New(name string, requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0

	// Allow a small burst so reply expansion is not serialized one-per-second
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows the request
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter %s", l.name)
	}
	return nil
}

// Allow checks if a request is allowed without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
