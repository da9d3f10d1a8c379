package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackindex/internal/adapters/reddit"
	"snackindex/internal/domain/mention"
	"snackindex/pkg/errors"
)

func TestSocialCollector_NilSearch(t *testing.T) {
	c := NewSocialCollector(nil, fakeScorer{}, "snacks", 20)
	assert.Nil(t, c.Collect(context.Background(), `"Sprite"`, []string{"Sprite"}, time.Now()))
}

func TestSocialCollector_SearchErrorYieldsEmpty(t *testing.T) {
	search := &fakeSocialSearch{searchErr: errors.New("upstream down")}
	c := NewSocialCollector(search, fakeScorer{}, "snacks", 20)

	got := c.Collect(context.Background(), `"Sprite"`, []string{"Sprite"}, time.Now())
	assert.Nil(t, got)
}

func TestSocialCollector_FiltersPostsByRecency(t *testing.T) {
	since := time.Unix(1_000_000, 0).UTC()
	search := &fakeSocialSearch{posts: []reddit.Post{
		{ID: "old", Title: "stale take on Sprite", CreatedUTC: 999_999},
		{ID: "boundary", Title: "exactly at the cutoff", CreatedUTC: 1_000_000},
		{ID: "fresh", Title: "Sprite is back", CreatedUTC: 1_000_001},
	}}
	c := NewSocialCollector(search, fakeScorer{}, "snacks", 20)

	got := c.Collect(context.Background(), `"Sprite"`, []string{"Sprite"}, since)

	require.Len(t, got, 1)
	assert.Equal(t, "Sprite is back ", got[0].Content)
	assert.Equal(t, mention.SourceSocialPost, got[0].Kind)
}

func TestSocialCollector_RepliesFilteredByTerms(t *testing.T) {
	search := &fakeSocialSearch{
		posts: []reddit.Post{{
			ID:         "p1",
			Title:      "New Sprite flavor",
			Selftext:   "thoughts?",
			Subreddit:  "snacks",
			Permalink:  "/r/snacks/p1",
			CreatedUTC: 2_000_000,
		}},
		replies: map[string][]reddit.Comment{
			"p1": {
				{Body: "I tried the new SPRITE yesterday", Subreddit: "snacks", CreatedUTC: 2_000_100},
				{Body: "completely unrelated comment", Subreddit: "snacks", CreatedUTC: 2_000_200},
				{Body: "sprite zero is better imo", Subreddit: "snacks", CreatedUTC: 2_000_300},
			},
		},
	}
	scorer := fakeScorer{scores: map[string]float64{
		"New Sprite flavor thoughts?":         0.5,
		"I tried the new SPRITE yesterday":    0.2,
		"sprite zero is better imo":           0.4,
	}}
	c := NewSocialCollector(search, scorer, "snacks", 20)

	got := c.Collect(context.Background(), `"Sprite"`, []string{"Sprite"}, time.Unix(0, 0))

	require.Len(t, got, 3, "post plus two term-matching replies")
	assert.Equal(t, mention.SourceSocialPost, got[0].Kind)
	assert.Equal(t, 0.5, got[0].SentimentScore)
	assert.Equal(t, mention.SourceSocialComment, got[1].Kind)
	assert.Equal(t, "I tried the new SPRITE yesterday", got[1].Content)
	assert.Equal(t, mention.SourceSocialComment, got[2].Kind)
	assert.Equal(t, "sprite zero is better imo", got[2].Content)
}

func TestSocialCollector_ReplyErrorDropsWholeBatch(t *testing.T) {
	search := &fakeSocialSearch{
		posts:      []reddit.Post{{ID: "p1", Title: "Sprite", CreatedUTC: 2_000_000}},
		repliesErr: errors.New("comment fetch failed"),
	}
	c := NewSocialCollector(search, fakeScorer{}, "snacks", 20)

	got := c.Collect(context.Background(), `"Sprite"`, []string{"Sprite"}, time.Unix(0, 0))
	assert.Nil(t, got, "partial batches must not survive a reply failure")
}

func TestSocialCollector_PassesScopeAndLimit(t *testing.T) {
	search := &fakeSocialSearch{}
	c := NewSocialCollector(search, fakeScorer{}, "snacks+fastfood+food+soda", 20)

	c.Collect(context.Background(), `"Oreo" OR "Oreo Cookies"`, []string{"Oreo"}, time.Now())

	assert.Equal(t, `"Oreo" OR "Oreo Cookies"`, search.lastQuery)
	assert.Equal(t, "snacks+fastfood+food+soda", search.lastScope)
	assert.Equal(t, 20, search.lastLimit)
}

func TestContainsAnyTerm(t *testing.T) {
	assert.True(t, containsAnyTerm("I love Takis Fuego", []string{"takis"}))
	assert.True(t, containsAnyTerm("OREO thins", []string{"Pocky", "oreo"}))
	assert.False(t, containsAnyTerm("nothing relevant here", []string{"Sprite"}))
	assert.False(t, containsAnyTerm("anything", nil))
}
