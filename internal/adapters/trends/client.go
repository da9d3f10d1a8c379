package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"snackindex/pkg/errors"
	"snackindex/pkg/logger"
)

const defaultBaseURL = "https://trends.google.com"

// Point is one time slice of an interest-over-time series. Values are
// aligned with the requested terms; HasData marks which slots carry a
// real observation.
type Point struct {
	Time    time.Time
	Values  []float64
	HasData []bool
}

// Client queries the Google Trends interest-over-time endpoint. The API is
// unofficial: every request first resolves a widget token via /explore and
// then reads the series via /widgetdata/multiline, and both responses carry
// an XSSI prefix that has to be stripped before parsing.
type Client struct {
	http     *resty.Client
	category int
	geo      string
	log      *logger.Logger
}

// NewClient creates a Google Trends client. No credentials are required.
func NewClient(category int, geo string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; SnackIndexCollector/0.1)"),
		category: category,
		geo:      geo,
		log:      logger.Get().With("adapter", "trends"),
	}
}

type exploreRequest struct {
	ComparisonItem []exploreKeyword `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type exploreKeyword struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []timelinePoint `json:"timelineData"`
	} `json:"default"`
}

type timelinePoint struct {
	Time    string    `json:"time"`
	Value   []float64 `json:"value"`
	HasData []bool    `json:"hasData"`
}

// InterestOverTime returns the interest series for the given terms over the
// trailing 24 hours. A 429 from either endpoint surfaces as ErrRateLimited.
func (c *Client) InterestOverTime(ctx context.Context, terms []string) ([]Point, error) {
	w, err := c.resolveWidget(ctx, terms)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":    "en-US",
			"tz":    "360",
			"req":   string(w.Request),
			"token": w.Token,
		}).
		Get("/trends/api/widgetdata/multiline")
	if err != nil {
		return nil, errors.Wrap(err, "fetch interest over time")
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var series multilineResponse
	if err := parseXSSI(resp.Body(), &series); err != nil {
		return nil, errors.Wrap(err, "decode interest over time")
	}

	points := make([]Point, 0, len(series.Default.TimelineData))
	for _, tp := range series.Default.TimelineData {
		secs, err := strconv.ParseInt(tp.Time, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{
			Time:    time.Unix(secs, 0).UTC(),
			Values:  tp.Value,
			HasData: tp.HasData,
		})
	}

	return points, nil
}

// resolveWidget performs the /explore call and picks the TIMESERIES widget
func (c *Client) resolveWidget(ctx context.Context, terms []string) (*widget, error) {
	req := exploreRequest{Category: c.category, Property: ""}
	for _, term := range terms {
		req.ComparisonItem = append(req.ComparisonItem, exploreKeyword{
			Keyword: term,
			Geo:     c.geo,
			Time:    "now 1-d",
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal explore request")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":  "en-US",
			"tz":  "360",
			"req": string(payload),
		}).
		Get("/trends/api/explore")
	if err != nil {
		return nil, errors.Wrap(err, "explore request")
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var explore exploreResponse
	if err := parseXSSI(resp.Body(), &explore); err != nil {
		return nil, errors.Wrap(err, "decode explore response")
	}

	for i := range explore.Widgets {
		if explore.Widgets[i].ID == "TIMESERIES" {
			return &explore.Widgets[i], nil
		}
	}

	return nil, errors.New("no TIMESERIES widget in explore response")
}

// SetBaseURL overrides the API endpoint, used by tests
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return errors.Wrapf(errors.ErrRateLimited, "trends API status %d", resp.StatusCode())
	case resp.StatusCode() != http.StatusOK:
		return errors.Newf("trends API status %d", resp.StatusCode())
	}
	return nil
}

var xssiPrefix = []byte(")]}'")

// parseXSSI strips the ")]}'" anti-hijacking prefix and unmarshals the rest.
// Anything that is not the prefix followed by a JSON object (an HTML error
// page, say) is rejected outright rather than handed to the decoder.
func parseXSSI(body []byte, dest interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, xssiPrefix) {
		trimmed = bytes.TrimSpace(trimmed[len(xssiPrefix):])
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("malformed trends payload")
	}
	return json.Unmarshal(trimmed, dest)
}
