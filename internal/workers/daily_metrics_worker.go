package workers

import (
	"context"
	"time"

	"snackindex/internal/collector"
	"snackindex/internal/domain/product"
	"snackindex/pkg/errors"
)

// DailyMetricsWorker runs the collection pipeline on its daily schedule.
// Each iteration reloads the catalog, so products approved between runs are
// picked up without a restart.
type DailyMetricsWorker struct {
	*BaseWorker
	pipeline *collector.Pipeline
	catalog  product.Catalog
}

// NewDailyMetricsWorker creates the daily collection worker
func NewDailyMetricsWorker(pipeline *collector.Pipeline, catalog product.Catalog, interval time.Duration) *DailyMetricsWorker {
	return &DailyMetricsWorker{
		BaseWorker: NewBaseWorker("daily_metrics_collector", interval, true),
		pipeline:   pipeline,
		catalog:    catalog,
	}
}

// Run executes one full collection pass
func (w *DailyMetricsWorker) Run(ctx context.Context) error {
	products, err := w.catalog.ListTracked(ctx)
	if err != nil {
		return errors.Wrap(err, "load product catalog")
	}

	if len(products) == 0 {
		w.Log().Warn("Product catalog is empty, nothing to collect")
		return nil
	}

	return w.pipeline.Run(ctx, products)
}
