package dailymetrics

import (
	"context"

	"github.com/shopspring/decimal"
)

// Sink persists finished metrics records
type Sink interface {
	// Upsert writes one record. A second upsert for the same
	// (product_id, date) overwrites every field of the existing row.
	Upsert(ctx context.Context, m *DailyMetrics) error
}

// PriceHistory reads previously stored prices for the fallback path
type PriceHistory interface {
	// LastKnownPrices returns the most recent non-null stored price per
	// product. Called once per run — the fallback map is built in bulk,
	// not per product.
	LastKnownPrices(ctx context.Context) (map[int64]decimal.Decimal, error)
}
