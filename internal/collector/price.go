package collector

import (
	"context"

	"github.com/shopspring/decimal"

	"snackindex/internal/domain/product"
	"snackindex/internal/metrics"
	"snackindex/pkg/logger"
)

// QuoteService is the external market-quote contract
type QuoteService interface {
	// Quote returns the current closing price for a ticker.
	// A missing or zero price is an error (errors.ErrNoQuote), not a value.
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// PriceCache memoizes the live-quote outcome per ticker for one run, so a
// ticker shared by several products is fetched at most once. Only the live
// outcome is cached: historical fallbacks are keyed by product identity and
// must not leak to other products through a shared ticker. Discarded when
// the run ends.
type PriceCache struct {
	entries map[string]quoteOutcome
}

type quoteOutcome struct {
	price    decimal.Decimal
	resolved bool // false marks "fetched but no valid price"
}

// NewPriceCache creates an empty run-scoped cache
func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[string]quoteOutcome)}
}

// PriceResolver resolves a market price with multi-level fallback:
// run cache, live quote, stored history, null.
type PriceResolver struct {
	quotes  QuoteService // nil when the source is disabled
	cache   *PriceCache
	metrics *metrics.PipelineMetrics
	log     *logger.Logger
}

// NewPriceResolver creates a resolver bound to one run's cache
func NewPriceResolver(quotes QuoteService, cache *PriceCache, m *metrics.PipelineMetrics) *PriceResolver {
	return &PriceResolver{
		quotes:  quotes,
		cache:   cache,
		metrics: m,
		log:     logger.Get().With("collector", "price"),
	}
}

// Resolve returns the price for a product, or an invalid NullDecimal when
// none can be found. A quote error or a zero closing price falls through to
// the product's last stored price; both failure and fallback leave the run
// able to continue.
func (r *PriceResolver) Resolve(ctx context.Context, p product.Product, history map[int64]decimal.Decimal) decimal.NullDecimal {
	if p.Ticker == "" {
		return decimal.NullDecimal{}
	}

	outcome, cached := r.cache.entries[p.Ticker]
	if cached {
		r.log.Infof("Using cached quote outcome for %s", p.Ticker)
		if r.metrics != nil {
			r.metrics.QuoteCacheHits.Inc()
		}
	} else {
		outcome = r.fetchLive(ctx, p.Ticker)
		r.cache.entries[p.Ticker] = outcome
	}

	if outcome.resolved {
		return decimal.NullDecimal{Decimal: outcome.price, Valid: true}
	}

	// Historical fallback is keyed by product, not ticker: products sharing
	// a ticker may have diverged in the catalog
	if fallback, ok := history[p.ID]; ok {
		r.log.Warnf("No live quote for %s, using last known price %s for product %d",
			p.Ticker, fallback.String(), p.ID)
		if r.metrics != nil {
			r.metrics.PriceFallbacks.Inc()
		}
		return decimal.NullDecimal{Decimal: fallback, Valid: true}
	}

	r.log.Errorf("No live quote for %s and no stored fallback for product %d", p.Ticker, p.ID)
	return decimal.NullDecimal{}
}

// fetchLive performs the one external quote call a ticker gets per run
func (r *PriceResolver) fetchLive(ctx context.Context, ticker string) quoteOutcome {
	if r.quotes == nil {
		r.log.Warn("Quote service not configured, skipping live fetch")
		return quoteOutcome{}
	}

	r.log.Infof("Fetching live quote for %s", ticker)

	price, err := r.quotes.Quote(ctx, ticker)
	if err != nil {
		// Treated the same as "no valid price": fall through to history
		r.log.Warnf("Live quote failed for %s: %v", ticker, err)
		return quoteOutcome{}
	}
	if price.IsZero() {
		r.log.Warnf("No valid closing price for %s", ticker)
		return quoteOutcome{}
	}

	return quoteOutcome{price: price, resolved: true}
}
