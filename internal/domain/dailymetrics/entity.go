package dailymetrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyMetrics is the unit of persistence: one row per product per day.
// Date is the day before collection ran — the pipeline always reports on
// "yesterday". (ProductID, Date) is the natural key; re-collecting the same
// day overwrites the row instead of duplicating it.
type DailyMetrics struct {
	ProductID          int64               `db:"product_id"`
	Date               time.Time           `db:"date"`
	TrendScore         int                 `db:"trend_score"`
	SocialMentionCount int                 `db:"social_mention_count"`
	AvgSocialSentiment float64             `db:"avg_social_sentiment"`
	NewsArticleCount   int                 `db:"news_article_count"`
	AvgNewsSentiment   float64             `db:"avg_news_sentiment"`
	Price              decimal.NullDecimal `db:"price"`
}
