package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"snackindex/internal/domain/dailymetrics"
	"snackindex/pkg/errors"
)

// Compile-time checks
var (
	_ dailymetrics.Sink         = (*MetricsRepository)(nil)
	_ dailymetrics.PriceHistory = (*MetricsRepository)(nil)
)

// MetricsRepository implements the metrics sink and the price history lookup
// on the daily_metrics table
type MetricsRepository struct {
	db DBTX
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db DBTX) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Upsert writes one metrics record. (product_id, date) is the natural key:
// a conflicting insert overwrites every metric column of the existing row.
func (r *MetricsRepository) Upsert(ctx context.Context, m *dailymetrics.DailyMetrics) error {
	query := `
		INSERT INTO daily_metrics (
			product_id, date, trend_score, social_mention_count, avg_social_sentiment,
			news_article_count, avg_news_sentiment, price
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (product_id, date) DO UPDATE SET
			trend_score = EXCLUDED.trend_score,
			social_mention_count = EXCLUDED.social_mention_count,
			avg_social_sentiment = EXCLUDED.avg_social_sentiment,
			news_article_count = EXCLUDED.news_article_count,
			avg_news_sentiment = EXCLUDED.avg_news_sentiment,
			price = EXCLUDED.price`

	_, err := r.db.ExecContext(ctx, query,
		m.ProductID, m.Date, m.TrendScore,
		m.SocialMentionCount, m.AvgSocialSentiment,
		m.NewsArticleCount, m.AvgNewsSentiment,
		m.Price,
	)

	return errors.Wrap(err, "upsert daily metrics")
}

type lastPriceRow struct {
	ProductID int64           `db:"product_id"`
	Price     decimal.Decimal `db:"price"`
}

// LastKnownPrices returns the most recent non-null stored price per product
// in one bulk read. Keyed by product, not ticker — products sharing a ticker
// may have diverged in the catalog.
func (r *MetricsRepository) LastKnownPrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT DISTINCT ON (product_id) product_id, price
		FROM daily_metrics
		WHERE price IS NOT NULL
		ORDER BY product_id, date DESC`

	var rows []lastPriceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "select last known prices")
	}

	prices := make(map[int64]decimal.Decimal, len(rows))
	for _, row := range rows {
		prices[row.ProductID] = row.Price
	}

	return prices, nil
}
