package finnhub

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"snackindex/internal/adapters/config"
	"snackindex/pkg/errors"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client fetches real-time quotes from Finnhub
type Client struct {
	http *resty.Client
}

// NewClient creates a Finnhub client or ErrMissingCredentials
func NewClient(cfg config.FinnhubConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrMissingCredentials, "finnhub")
	}

	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("X-Finnhub-Token", cfg.APIKey),
	}, nil
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// Quote returns the current closing price for a ticker. A missing or
// exactly-zero price comes back as ErrNoQuote — Finnhub reports unknown
// symbols as all-zero quotes rather than an error status.
func (c *Client) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	var result quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", ticker).
		SetResult(&result).
		Get("/quote")
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "quote request")
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return decimal.Zero, errors.Wrap(errors.ErrRateLimited, "finnhub")
	case resp.StatusCode() != http.StatusOK:
		return decimal.Zero, errors.Newf("finnhub status %d", resp.StatusCode())
	}

	if result.Current == 0 {
		return decimal.Zero, errors.Wrapf(errors.ErrNoQuote, "ticker %s", ticker)
	}

	return decimal.NewFromFloat(result.Current), nil
}

// SetBaseURL overrides the API endpoint, used by tests
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}
