package newsapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"snackindex/internal/adapters/config"
	"snackindex/internal/adapters/ratelimit"
	"snackindex/pkg/errors"
)

const defaultBaseURL = "https://newsapi.org"

// Client queries the NewsAPI "everything" index
type Client struct {
	http    *resty.Client
	limiter *ratelimit.Limiter
}

// NewClient creates a NewsAPI client or ErrMissingCredentials
func NewClient(cfg config.NewsAPIConfig, limiter *ratelimit.Limiter) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrMissingCredentials, "newsapi")
	}

	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("X-Api-Key", cfg.APIKey),
		limiter: limiter,
	}, nil
}

// Article is one result from the news index
type Article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

// Search queries the index for English articles matching the query,
// published on or after since, sorted by relevance.
func (c *Client) Search(ctx context.Context, query string, since time.Time) ([]Article, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var result everythingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"from":     since.Format("2006-01-02"),
			"language": "en",
			"sortBy":   "relevancy",
		}).
		SetResult(&result).
		Get("/v2/everything")
	if err != nil {
		return nil, errors.Wrap(err, "news search request")
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, errors.Wrap(errors.ErrRateLimited, "newsapi")
	case resp.StatusCode() != http.StatusOK:
		return nil, errors.Newf("newsapi status %d: %s", resp.StatusCode(), result.Message)
	case result.Status != "ok":
		return nil, errors.Newf("newsapi error: %s", result.Message)
	}

	return result.Articles, nil
}

// SetBaseURL overrides the API endpoint, used by tests
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}
