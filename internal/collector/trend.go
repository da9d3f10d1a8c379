package collector

import (
	"context"
	"math"
	"time"

	"snackindex/internal/adapters/trends"
	"snackindex/pkg/errors"
	"snackindex/pkg/logger"
	"snackindex/pkg/retry"
)

// maxTrendTerms is the hard ceiling the trend service imposes per query
const maxTrendTerms = 5

// TrendService is the external search-interest contract
type TrendService interface {
	// InterestOverTime returns the trailing-24h series for up to 5 terms.
	// Rate limiting surfaces as errors.ErrRateLimited.
	InterestOverTime(ctx context.Context, terms []string) ([]trends.Point, error)
}

// TrendSignal turns raw interest-over-time series into a single daily score:
// the mean of the latest time slice, floored to an integer on the 0-100
// scale. Every failure mode degrades to 0 — a product must never stall the
// run because its trend lookup misbehaved.
type TrendSignal struct {
	svc   TrendService // nil when the source is disabled
	retry retry.Policy
	log   *logger.Logger
}

// NewTrendSignal creates the trend signal with the production backoff
// schedule: 3 attempts, 15s before the first retry, doubling after that.
// Only rate-limit responses are retried.
func NewTrendSignal(svc TrendService) *TrendSignal {
	return &TrendSignal{
		svc: svc,
		retry: retry.Policy{
			MaxAttempts:  3,
			InitialDelay: 15 * time.Second,
			Multiplier:   2.0,
			Retryable: func(err error) bool {
				return errors.Is(err, errors.ErrRateLimited)
			},
		},
		log: logger.Get().With("collector", "trend"),
	}
}

// Score returns the trend score for the given search terms. Terms beyond the
// first five are dropped. An empty term list returns 0 without touching the
// service.
func (t *TrendSignal) Score(ctx context.Context, terms []string) int {
	if len(terms) == 0 {
		t.log.Warn("Empty search term list, skipping trend lookup")
		return 0
	}
	if t.svc == nil {
		t.log.Warn("Trend service not configured, skipping trend lookup")
		return 0
	}

	if len(terms) > maxTrendTerms {
		terms = terms[:maxTrendTerms]
	}

	var points []trends.Point
	err := t.retry.Do(ctx, func() error {
		var err error
		points, err = t.svc.InterestOverTime(ctx, terms)
		return err
	})
	if err != nil {
		t.log.Errorf("Trend lookup failed for terms %v: %v", terms, err)
		return 0
	}

	return latestSliceMean(points)
}

// latestSliceMean averages the most recent time slice, skipping slots
// without data. An empty series or an all-empty slice yields 0.
func latestSliceMean(points []trends.Point) int {
	if len(points) == 0 {
		return 0
	}

	last := points[len(points)-1]
	sum := 0.0
	count := 0

	for i, v := range last.Values {
		if i < len(last.HasData) && !last.HasData[i] {
			continue
		}
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0
	}

	return int(math.Floor(sum / float64(count)))
}
