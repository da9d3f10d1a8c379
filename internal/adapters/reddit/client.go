package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"snackindex/internal/adapters/config"
	"snackindex/internal/adapters/ratelimit"
	"snackindex/pkg/errors"
	"snackindex/pkg/logger"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"
)

// Client talks to the Reddit search API with application-only OAuth.
// Construction fails when credentials are missing so a misconfigured source
// is discovered at startup, not mid-run.
type Client struct {
	httpClient   *http.Client
	limiter      *ratelimit.Limiter
	clientID     string
	clientSecret string
	userAgent    string
	accessToken  string
	tokenExpiry  time.Time
	authURL      string
	apiURL       string
	log          *logger.Logger
}

// NewClient creates a Reddit client or ErrMissingCredentials
func NewClient(cfg config.RedditConfig, limiter *ratelimit.Limiter) (*Client, error) {
	if !cfg.Configured() {
		return nil, errors.Wrap(errors.ErrMissingCredentials, "reddit")
	}

	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      limiter,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		authURL:      defaultAuthURL,
		apiURL:       defaultAPIURL,
		log:          logger.Get().With("adapter", "reddit"),
	}, nil
}

// Post is one search result item
type Post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// CreatedAt returns the post creation time in UTC
func (p Post) CreatedAt() time.Time {
	return time.Unix(int64(p.CreatedUTC), 0).UTC()
}

// URL returns the canonical reddit.com link for the post
func (p Post) URL() string {
	return "https://www.reddit.com" + p.Permalink
}

// Comment is one reply under a post
type Comment struct {
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// CreatedAt returns the comment creation time in UTC
func (c Comment) CreatedAt() time.Time {
	return time.Unix(int64(c.CreatedUTC), 0).UTC()
}

// URL returns the canonical reddit.com link for the comment
func (c Comment) URL() string {
	return "https://www.reddit.com" + c.Permalink
}

// Listing envelope shared by search and comment responses
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type commentData struct {
	Comment
	Replies json.RawMessage `json:"replies"` // nested listing, or "" when empty
}

// Search returns up to limit posts matching the query across the scope
// (multi-subreddit syntax, e.g. "snacks+fastfood"), newest first.
func (c *Client) Search(ctx context.Context, query, scope string, limit int) ([]Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "new")
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("restrict_sr", "on")

	endpoint := fmt.Sprintf("%s/r/%s/search?%s", c.apiURL, scope, params.Encode())

	var result listing
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(result.Data.Children))
	for _, ch := range result.Data.Children {
		if ch.Kind != "t3" {
			continue
		}
		var post Post
		if err := json.Unmarshal(ch.Data, &post); err != nil {
			return nil, errors.Wrap(err, "decode post")
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// Replies returns the full expanded comment tree of a post in source order.
// "load more" placeholders (kind "more") are dropped, never fetched.
func (c *Client) Replies(ctx context.Context, post Post) ([]Comment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s?limit=500", c.apiURL, post.ID)

	// The comments endpoint returns a two-element array:
	// the post listing and the comment listing
	var payload []listing
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, errors.New("malformed comments response")
	}

	return flattenComments(payload[1].Data.Children)
}

// flattenComments walks a comment forest depth-first, skipping "more"
// placeholders at every level
func flattenComments(children []child) ([]Comment, error) {
	var comments []Comment

	for _, ch := range children {
		if ch.Kind != "t1" {
			continue
		}

		var data commentData
		if err := json.Unmarshal(ch.Data, &data); err != nil {
			return nil, errors.Wrap(err, "decode comment")
		}
		comments = append(comments, data.Comment)

		// replies is the empty string when there are none
		trimmed := strings.TrimSpace(string(data.Replies))
		if trimmed == "" || trimmed == `""` || trimmed == "null" {
			continue
		}

		var nested listing
		if err := json.Unmarshal(data.Replies, &nested); err != nil {
			return nil, errors.Wrap(err, "decode nested replies")
		}
		descendants, err := flattenComments(nested.Data.Children)
		if err != nil {
			return nil, err
		}
		comments = append(comments, descendants...)
	}

	return comments, nil
}

// get performs a rate-limited, authenticated GET and decodes the response
func (c *Client) get(ctx context.Context, endpoint string, dest interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if time.Now().After(c.tokenExpiry) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return errors.Wrap(err, "refresh Reddit access token")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "create Reddit API request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "Reddit API request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.Wrap(errors.ErrRateLimited, "reddit")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.Newf("Reddit API returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// refreshAccessToken obtains a new application-only OAuth token
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.log.Debug("Refreshing Reddit OAuth token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return errors.Wrap(err, "create OAuth request")
	}

	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "Reddit OAuth request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.Newf("Reddit OAuth failed with status %d: %s", resp.StatusCode, string(body))
	}

	var oauth oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&oauth); err != nil {
		return errors.Wrap(err, "decode OAuth response")
	}

	c.accessToken = oauth.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(oauth.ExpiresIn) * time.Second)

	return nil
}
