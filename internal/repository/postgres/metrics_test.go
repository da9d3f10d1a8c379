package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackindex/internal/domain/dailymetrics"
	"snackindex/internal/testsupport"
)

func createMetricsSchema(t *testing.T, tx *sqlx.Tx) {
	t.Helper()

	ddl := `
		CREATE TEMP TABLE daily_metrics (
			product_id BIGINT NOT NULL,
			date DATE NOT NULL,
			trend_score INTEGER NOT NULL DEFAULT 0,
			social_mention_count INTEGER NOT NULL DEFAULT 0,
			avg_social_sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
			news_article_count INTEGER NOT NULL DEFAULT 0,
			avg_news_sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
			price NUMERIC(12, 4),
			PRIMARY KEY (product_id, date)
		) ON COMMIT DROP;`

	_, err := tx.Exec(ddl)
	require.NoError(t, err)
}

func metricsFixture(productID int64, date time.Time) dailymetrics.DailyMetrics {
	return dailymetrics.DailyMetrics{
		ProductID:          productID,
		Date:               date,
		TrendScore:         42,
		SocialMentionCount: 3,
		AvgSocialSentiment: 0.1333,
		NewsArticleCount:   2,
		AvgNewsSentiment:   0.1,
		Price:              decimal.NullDecimal{Decimal: decimal.NewFromFloat(61.20), Valid: true},
	}
}

func TestMetricsRepository_UpsertInsertsAndOverwrites(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	tx := helper.Tx()
	createMetricsSchema(t, tx)

	repo := NewMetricsRepository(tx)
	ctx := context.Background()
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	record := metricsFixture(1, date)
	require.NoError(t, repo.Upsert(ctx, &record))

	// Rerun for the same day replaces, never duplicates
	record.TrendScore = 55
	record.SocialMentionCount = 7
	record.Price = decimal.NullDecimal{}
	require.NoError(t, repo.Upsert(ctx, &record))

	var count int
	require.NoError(t, tx.Get(&count, `SELECT COUNT(*) FROM daily_metrics`))
	assert.Equal(t, 1, count)

	var stored dailymetrics.DailyMetrics
	require.NoError(t, tx.GetContext(ctx, &stored, `
		SELECT product_id, date, trend_score, social_mention_count, avg_social_sentiment,
		       news_article_count, avg_news_sentiment, price
		FROM daily_metrics WHERE product_id = $1`, int64(1)))

	assert.Equal(t, 55, stored.TrendScore)
	assert.Equal(t, 7, stored.SocialMentionCount)
	assert.False(t, stored.Price.Valid, "an overwrite can null the price out")
}

func TestMetricsRepository_UpsertNullPrice(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	tx := helper.Tx()
	createMetricsSchema(t, tx)

	repo := NewMetricsRepository(tx)
	ctx := context.Background()

	record := metricsFixture(1, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC))
	record.Price = decimal.NullDecimal{}
	require.NoError(t, repo.Upsert(ctx, &record))

	var price *string
	require.NoError(t, tx.Get(&price, `SELECT price FROM daily_metrics WHERE product_id = 1`))
	assert.Nil(t, price)
}

func TestMetricsRepository_LastKnownPrices(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	tx := helper.Tx()
	createMetricsSchema(t, tx)

	repo := NewMetricsRepository(tx)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	price := func(v float64) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
	}

	// Product 1: an older price, then a newer one, then a null day
	for _, rec := range []dailymetrics.DailyMetrics{
		{ProductID: 1, Date: day(24), Price: price(59.10)},
		{ProductID: 1, Date: day(25), Price: price(61.20)},
		{ProductID: 1, Date: day(26), Price: decimal.NullDecimal{}},
		// Product 2: only null prices
		{ProductID: 2, Date: day(25), Price: decimal.NullDecimal{}},
	} {
		require.NoError(t, repo.Upsert(ctx, &rec))
	}

	prices, err := repo.LastKnownPrices(ctx)
	require.NoError(t, err)

	require.Len(t, prices, 1, "products without any stored price are absent")
	assert.True(t, prices[1].Equal(decimal.NewFromFloat(61.20)), "latest non-null price wins")
}
