package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics exposes Prometheus counters for one collector process.
// Degraded sources are observable here and in logs only; the persisted
// records carry no error fields.
type PipelineMetrics struct {
	ProductsProcessed prometheus.Counter
	MentionsCollected *prometheus.CounterVec
	QuoteCacheHits    prometheus.Counter
	PriceFallbacks    prometheus.Counter
	UpsertFailures    prometheus.Counter
	ProductDuration   prometheus.Histogram
}

// NewPipelineMetrics registers the pipeline metrics with the given registerer
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		ProductsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "snackindex_products_processed_total",
			Help: "Number of products fully processed by the pipeline",
		}),
		MentionsCollected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snackindex_mentions_collected_total",
			Help: "Number of scored mentions collected, by source",
		}, []string{"source"}),
		QuoteCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "snackindex_quote_cache_hits_total",
			Help: "Quote lookups served from the run-scoped price cache",
		}),
		PriceFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "snackindex_price_fallbacks_total",
			Help: "Prices resolved from stored history instead of a live quote",
		}),
		UpsertFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "snackindex_upsert_failures_total",
			Help: "Daily metrics records that failed to persist",
		}),
		ProductDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "snackindex_product_duration_seconds",
			Help:    "Wall time spent collecting one product, jitter included",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}
