package mention

import "time"

// SourceKind identifies what kind of item a mention was scored from
type SourceKind string

const (
	SourceSocialPost    SourceKind = "social_post"
	SourceSocialComment SourceKind = "social_comment"
	SourceNewsArticle   SourceKind = "news_article"
)

// Mention is one scored item from a social or news source.
// Mentions only exist in memory between collection and aggregation;
// they are never persisted individually.
type Mention struct {
	Content        string
	SentimentScore float64 // compound score in [-1, 1]
	Kind           SourceKind
	OriginName     string // subreddit or publisher name
	URL            string
	PublishedAt    time.Time // UTC
}
