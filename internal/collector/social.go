package collector

import (
	"context"
	"strings"
	"time"

	"snackindex/internal/adapters/reddit"
	"snackindex/internal/domain/mention"
	"snackindex/internal/services/sentiment"
	"snackindex/pkg/logger"
)

// SocialSearch is the external community-search contract
type SocialSearch interface {
	// Search returns up to limit posts matching query across the scope,
	// newest first
	Search(ctx context.Context, query, scope string, limit int) ([]reddit.Post, error)

	// Replies returns a post's expanded reply tree in source order,
	// without pagination placeholders
	Replies(ctx context.Context, post reddit.Post) ([]reddit.Comment, error)
}

// SocialCollector gathers scored mentions from community forums.
// Fail-soft by contract: any upstream failure returns an empty slice, never
// a partial one — downstream aggregation cannot tell "zero genuine mentions"
// from "partial failure", so partial results are avoided entirely.
type SocialCollector struct {
	search SocialSearch // nil when the source is disabled
	scorer sentiment.Scorer
	scope  string
	limit  int
	log    *logger.Logger
}

// NewSocialCollector creates a social mention collector searching the given
// community scope with a fixed result limit
func NewSocialCollector(search SocialSearch, scorer sentiment.Scorer, scope string, limit int) *SocialCollector {
	return &SocialCollector{
		search: search,
		scorer: scorer,
		scope:  scope,
		limit:  limit,
		log:    logger.Get().With("collector", "social"),
	}
}

// Collect returns one mention per matching post created after since, plus
// one per reply whose body contains any of the search terms. Emitted order
// is source order: each post followed by its replies.
func (c *SocialCollector) Collect(ctx context.Context, query string, searchTerms []string, since time.Time) []mention.Mention {
	if c.search == nil {
		c.log.Warn("Social search not configured, skipping collection")
		return nil
	}

	c.log.Infof("Searching r/%s for query: %q", c.scope, query)

	posts, err := c.search.Search(ctx, query, c.scope, c.limit)
	if err != nil {
		c.log.Errorf("Social search failed for query %q: %v", query, err)
		return nil
	}

	var mentions []mention.Mention

	for _, post := range posts {
		if !post.CreatedAt().After(since) {
			continue
		}

		text := post.Title + " " + post.Selftext
		mentions = append(mentions, mention.Mention{
			Content:        text,
			SentimentScore: c.scorer.Score(text),
			Kind:           mention.SourceSocialPost,
			OriginName:     post.Subreddit,
			URL:            post.URL(),
			PublishedAt:    post.CreatedAt(),
		})

		replies, err := c.search.Replies(ctx, post)
		if err != nil {
			// Partial results are worse than none; drop the whole batch
			c.log.Errorf("Reply expansion failed for post %s: %v", post.ID, err)
			return nil
		}

		for _, reply := range replies {
			if !containsAnyTerm(reply.Body, searchTerms) {
				continue
			}
			mentions = append(mentions, mention.Mention{
				Content:        reply.Body,
				SentimentScore: c.scorer.Score(reply.Body),
				Kind:           mention.SourceSocialComment,
				OriginName:     reply.Subreddit,
				URL:            reply.URL(),
				PublishedAt:    reply.CreatedAt(),
			})
		}
	}

	return mentions
}

// containsAnyTerm reports whether text contains any term as a
// case-insensitive substring
func containsAnyTerm(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
