package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDailyHistory(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		assert.Equal(t, "folioview/1.0", r.Header.Get("User-Agent"))

		fmt.Fprintf(w, `{
			"chart": {
				"result": [{
					"timestamp": [%d, %d, %d],
					"indicators": {"quote": [{"close": [185.64, null, 186.19]}]}
				}],
				"error": null
			}
		}`, day1.Unix(), day2.Unix(), day3.Unix())
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	bars, err := client.GetDailyHistory(context.Background(), "AAPL",
		day1, day3)
	require.NoError(t, err)

	// The null close (halt/holiday) is dropped
	require.Len(t, bars, 2)
	assert.Equal(t, day1, bars[0].Date)
	assert.Equal(t, 185.64, bars[0].Close)
	assert.Equal(t, day3, bars[1].Date)
	assert.Equal(t, 186.19, bars[1].Close)
}

func TestGetDailyHistory_ChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"chart": {
				"result": null,
				"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	_, err := client.GetDailyHistory(context.Background(), "NOPE",
		time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestGetDailyHistory_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	bars, err := client.GetDailyHistory(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetDailyHistory_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	_, err := client.GetDailyHistory(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestGetProfile_Stock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/AAPL", r.URL.Path)
		assert.Equal(t, "assetProfile,quoteType", r.URL.Query().Get("modules"))
		fmt.Fprint(w, `{
			"quoteSummary": {
				"result": [{
					"assetProfile": {"sector": "Technology", "industry": "Consumer Electronics"},
					"quoteType": {"quoteType": "EQUITY", "longName": "Apple Inc.", "shortName": "Apple"}
				}]
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	profile, err := client.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", profile.Symbol)
	assert.Equal(t, "Apple Inc.", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.False(t, profile.IsETF)
}

func TestGetProfile_ETFWithoutSector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"quoteSummary": {
				"result": [{
					"assetProfile": {},
					"quoteType": {"quoteType": "ETF", "shortName": "Vanguard S&P 500 ETF"}
				}]
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	profile, err := client.GetProfile(context.Background(), "VOO")
	require.NoError(t, err)

	assert.True(t, profile.IsETF)
	assert.Empty(t, profile.Sector)
	// longName absent: shortName is the fallback
	assert.Equal(t, "Vanguard S&P 500 ETF", profile.Name)
}

func TestGetProfile_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary": {"result": []}}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	_, err := client.GetProfile(context.Background(), "NOPE")
	require.Error(t, err)
}
