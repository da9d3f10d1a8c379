package collector

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"snackindex/internal/adapters/newsapi"
	"snackindex/internal/adapters/reddit"
	"snackindex/internal/adapters/trends"
	"snackindex/internal/domain/dailymetrics"
	"snackindex/internal/metrics"
)

func newTestMetrics() *metrics.PipelineMetrics {
	return metrics.NewPipelineMetrics(prometheus.NewRegistry())
}

// fakeScorer returns a canned score per exact text, 0 otherwise
type fakeScorer struct {
	scores map[string]float64
}

func (f fakeScorer) Score(text string) float64 {
	return f.scores[text]
}

type trendResponse struct {
	points []trends.Point
	err    error
}

// fakeTrendService replays a scripted sequence of responses
type fakeTrendService struct {
	responses []trendResponse
	calls     [][]string
}

func (f *fakeTrendService) InterestOverTime(_ context.Context, terms []string) ([]trends.Point, error) {
	f.calls = append(f.calls, append([]string(nil), terms...))
	if len(f.responses) == 0 {
		return nil, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp.points, resp.err
}

type fakeSocialSearch struct {
	posts      []reddit.Post
	searchErr  error
	replies    map[string][]reddit.Comment
	repliesErr error

	searchCalls  int
	lastQuery    string
	lastScope    string
	lastLimit    int
	repliesCalls int
}

func (f *fakeSocialSearch) Search(_ context.Context, query, scope string, limit int) ([]reddit.Post, error) {
	f.searchCalls++
	f.lastQuery = query
	f.lastScope = scope
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.posts, nil
}

func (f *fakeSocialSearch) Replies(_ context.Context, post reddit.Post) ([]reddit.Comment, error) {
	f.repliesCalls++
	if f.repliesErr != nil {
		return nil, f.repliesErr
	}
	return f.replies[post.ID], nil
}

type fakeNewsSearch struct {
	articles []newsapi.Article
	err      error

	lastQuery string
	lastSince time.Time
}

func (f *fakeNewsSearch) Search(_ context.Context, query string, since time.Time) ([]newsapi.Article, error) {
	f.lastQuery = query
	f.lastSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeQuoteService struct {
	prices map[string]decimal.Decimal
	errs   map[string]error
	calls  []string
}

func (f *fakeQuoteService) Quote(_ context.Context, ticker string) (decimal.Decimal, error) {
	f.calls = append(f.calls, ticker)
	if err, ok := f.errs[ticker]; ok {
		return decimal.Zero, err
	}
	return f.prices[ticker], nil
}

type sinkKey struct {
	productID int64
	date      time.Time
}

// memorySink is an in-memory Sink keyed by (product, date), mirroring the
// store's conflict target
type memorySink struct {
	records map[sinkKey]dailymetrics.DailyMetrics
	upserts int
	failFor map[int64]error
}

func newMemorySink() *memorySink {
	return &memorySink{records: make(map[sinkKey]dailymetrics.DailyMetrics)}
}

func (s *memorySink) Upsert(_ context.Context, record *dailymetrics.DailyMetrics) error {
	s.upserts++
	if err := s.failFor[record.ProductID]; err != nil {
		return err
	}
	s.records[sinkKey{record.ProductID, record.Date}] = *record
	return nil
}

type fakeHistory struct {
	prices map[int64]decimal.Decimal
	err    error
}

func (f fakeHistory) LastKnownPrices(_ context.Context) (map[int64]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}
