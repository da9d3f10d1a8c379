package collector

import (
	"context"
	"time"

	"snackindex/internal/adapters/newsapi"
	"snackindex/internal/domain/mention"
	"snackindex/internal/services/sentiment"
	"snackindex/pkg/logger"
)

// NewsSearch is the external news-index contract
type NewsSearch interface {
	// Search returns English articles matching query published on or
	// after since, sorted by relevance
	Search(ctx context.Context, query string, since time.Time) ([]newsapi.Article, error)
}

// NewsCollector gathers scored mentions from a news index, deduplicating
// syndication copies by canonical URL. Same fail-soft contract as the
// social collector: failures yield an empty slice.
type NewsCollector struct {
	search NewsSearch // nil when the source is disabled
	scorer sentiment.Scorer
	log    *logger.Logger
}

// NewNewsCollector creates a news mention collector
func NewNewsCollector(search NewsSearch, scorer sentiment.Scorer) *NewsCollector {
	return &NewsCollector{
		search: search,
		scorer: scorer,
		log:    logger.Get().With("collector", "news"),
	}
}

// Collect returns one mention per surviving article. Duplicate URLs are
// dropped before scoring, first occurrence wins, so one article syndicated
// across outlets cannot inflate the sentiment counts.
func (c *NewsCollector) Collect(ctx context.Context, query string, since time.Time) []mention.Mention {
	if c.search == nil {
		c.log.Warn("News search not configured, skipping collection")
		return nil
	}

	c.log.Infof("Searching news index for query: %q", query)

	articles, err := c.search.Search(ctx, query, since)
	if err != nil {
		c.log.Errorf("News search failed for query %q: %v", query, err)
		return nil
	}

	seen := make(map[string]bool, len(articles))
	var mentions []mention.Mention

	for _, article := range articles {
		if seen[article.URL] {
			continue
		}
		seen[article.URL] = true

		text := article.Title + " " + article.Description
		mentions = append(mentions, mention.Mention{
			Content:        text,
			SentimentScore: c.scorer.Score(text),
			Kind:           mention.SourceNewsArticle,
			OriginName:     article.Source.Name,
			URL:            article.URL,
			PublishedAt:    article.PublishedAt.UTC(),
		})
	}

	return mentions
}
