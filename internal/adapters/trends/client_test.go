package trends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackindex/pkg/errors"
)

const xssiHeader = ")]}'\n"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(71, "")
	client.SetBaseURL(server.URL)

	return client
}

func TestInterestOverTime(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trends/api/explore":
			var req exploreRequest
			require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("req")), &req))
			assert.Equal(t, 71, req.Category)
			require.Len(t, req.ComparisonItem, 1)
			assert.Equal(t, "Sprite", req.ComparisonItem[0].Keyword)
			assert.Equal(t, "now 1-d", req.ComparisonItem[0].Time)

			w.Write([]byte(xssiHeader + `{"widgets": [
				{"id": "TIMESERIES", "token": "tok123", "request": {"foo": "bar"}},
				{"id": "RELATED_QUERIES", "token": "other", "request": {}}
			]}`))
		case "/trends/api/widgetdata/multiline":
			assert.Equal(t, "tok123", r.URL.Query().Get("token"))

			w.Write([]byte(xssiHeader + `{"default": {"timelineData": [
				{"time": "1787558400", "value": [40], "hasData": [true]},
				{"time": "1787562000", "value": [42], "hasData": [true]}
			]}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	points, err := client.InterestOverTime(context.Background(), []string{"Sprite"})
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1787558400, 0).UTC(), points[0].Time)
	assert.Equal(t, []float64{40}, points[0].Values)
	assert.Equal(t, []bool{true}, points[0].HasData)
	assert.Equal(t, []float64{42}, points[1].Values)
}

func TestInterestOverTime_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.InterestOverTime(context.Background(), []string{"Sprite"})
	assert.ErrorIs(t, err, errors.ErrRateLimited)
}

func TestInterestOverTime_NoTimeseriesWidget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(xssiHeader + `{"widgets": [{"id": "RELATED_QUERIES", "token": "x", "request": {}}]}`))
	})

	_, err := client.InterestOverTime(context.Background(), []string{"Sprite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMESERIES")
}

func TestParseXSSI(t *testing.T) {
	var dest map[string]int

	require.NoError(t, parseXSSI([]byte(")]}'\n{\"a\": 1}"), &dest))
	assert.Equal(t, 1, dest["a"])

	require.NoError(t, parseXSSI([]byte(`{"a": 2}`), &dest), "plain JSON also accepted")
	assert.Equal(t, 2, dest["a"])

	assert.Error(t, parseXSSI([]byte(")]}'"), &dest), "payload without an object is malformed")
	assert.Error(t, parseXSSI([]byte("<html><script>var a = {};</script></html>"), &dest),
		"an error page is rejected even when it contains a brace")
	assert.Error(t, parseXSSI(nil, &dest))
}
