package collector

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"snackindex/internal/domain/dailymetrics"
	"snackindex/internal/domain/mention"
	"snackindex/internal/domain/product"
	"snackindex/internal/metrics"
	"snackindex/pkg/logger"
)

// Jitter bounds for the pause before each trend lookup. Consecutive products
// must not burst the rate-limited trend service.
const (
	jitterMin = 2 * time.Second
	jitterMax = 5 * time.Second
)

// Pipeline runs one full collection pass: for every tracked product it
// gathers the trend score, social and news mentions, and a resolved price,
// then upserts one DailyMetrics record. Strictly sequential; the only
// concurrency-shaped behavior is deliberate throttling.
type Pipeline struct {
	trend   *TrendSignal
	social  *SocialCollector
	news    *NewsCollector
	quotes  QuoteService
	history dailymetrics.PriceHistory
	sink    dailymetrics.Sink
	metrics *metrics.PipelineMetrics
	log     *logger.Logger

	// Injectable for tests
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	jitter func() time.Duration
}

// NewPipeline wires the pipeline from its collaborators. The quote service
// may be nil when the source is disabled; a fresh run-scoped price cache is
// created inside every Run.
func NewPipeline(
	trend *TrendSignal,
	social *SocialCollector,
	news *NewsCollector,
	quotes QuoteService,
	history dailymetrics.PriceHistory,
	sink dailymetrics.Sink,
	m *metrics.PipelineMetrics,
) *Pipeline {
	return &Pipeline{
		trend:   trend,
		social:  social,
		news:    news,
		quotes:  quotes,
		history: history,
		sink:    sink,
		metrics: m,
		log:     logger.Get().With("component", "pipeline"),
		now:     time.Now,
		sleep:   sleepCtx,
		jitter: func() time.Duration {
			return jitterMin + time.Duration(rand.Int63n(int64(jitterMax-jitterMin)))
		},
	}
}

// Run processes every product in the given order. No product failure aborts
// the loop: the collectors degrade to neutral values by contract, and a
// persistence failure is logged and skipped. Run always completes.
func (p *Pipeline) Run(ctx context.Context, products []product.Product) error {
	runID := uuid.New().String()
	log := p.log.With("run_id", runID)

	log.Infof("Starting collection run for %d products", len(products))

	// One bulk read for the whole run bounds calls to the store
	fallbackPrices, err := p.history.LastKnownPrices(ctx)
	if err != nil {
		log.Errorf("Failed to build price fallback map, continuing without: %v", err)
		fallbackPrices = map[int64]decimal.Decimal{}
	} else {
		log.Infof("Built price fallback map for %d products", len(fallbackPrices))
	}

	resolver := NewPriceResolver(p.quotes, NewPriceCache(), p.metrics)

	// Shared across every product in the run, even across a day boundary:
	// the run reports on "yesterday" as seen at its start. Derived from
	// calendar components so the host zone picks the day, not the UTC
	// instant.
	y, m, d := p.now().AddDate(0, 0, -1).Date()
	reportDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	socialSince := p.now().Add(-24 * time.Hour)

	for _, prod := range products {
		start := p.now()
		plog := log.With("product", prod.Name)

		// Spread trend requests out so back-to-back products do not
		// trip the trend service's rate limiting
		pause := p.jitter()
		plog.Infof("Waiting %.2fs before trend request", pause.Seconds())
		p.sleep(ctx, pause)

		trendScore := p.trend.Score(ctx, prod.SearchTerms)

		socialMentions := p.social.Collect(ctx, prod.SocialQuery, prod.SearchTerms, socialSince)
		socialCount, socialAvg := mention.Aggregate(socialMentions)

		newsMentions := p.news.Collect(ctx, prod.NewsQuery, reportDate)
		newsCount, newsAvg := mention.Aggregate(newsMentions)

		price := resolver.Resolve(ctx, prod, fallbackPrices)

		record := dailymetrics.DailyMetrics{
			ProductID:          prod.ID,
			Date:               reportDate,
			TrendScore:         trendScore,
			SocialMentionCount: socialCount,
			AvgSocialSentiment: socialAvg,
			NewsArticleCount:   newsCount,
			AvgNewsSentiment:   newsAvg,
			Price:              price,
		}

		if err := p.sink.Upsert(ctx, &record); err != nil {
			plog.Errorf("Failed to persist metrics: %v", err)
			if p.metrics != nil {
				p.metrics.UpsertFailures.Inc()
			}
			continue
		}

		if p.metrics != nil {
			p.metrics.ProductsProcessed.Inc()
			p.metrics.MentionsCollected.WithLabelValues("social").Add(float64(socialCount))
			p.metrics.MentionsCollected.WithLabelValues("news").Add(float64(newsCount))
			p.metrics.ProductDuration.Observe(p.now().Sub(start).Seconds())
		}

		priceText := "null"
		if price.Valid {
			priceText = price.Decimal.String()
		}
		plog.Infof("Done: trend=%d social=%d (avg %.4f) news=%d (avg %.4f) price=%s",
			trendScore, socialCount, socialAvg, newsCount, newsAvg, priceText)
	}

	log.Info("Collection run complete")
	return nil
}

// sleepCtx sleeps for d or until the context is cancelled
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
