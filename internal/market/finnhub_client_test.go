package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(), // Use a no-op logger for tests
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func TestGetQuote(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)
			assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
			assert.Equal(t, "test_api_key", r.URL.Query().Get("token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"c": 512.34, "d": 2.1, "dp": 0.41, "pc": 510.24}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		quote, err := c.GetQuote(context.Background(), "SPY")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 512.34, quote.Current)
		assert.Equal(t, 0.41, quote.PercentChange)
	})

	t.Run("APIError", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Invalid API key"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		_, err := c.GetQuote(context.Background(), "SPY")

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SPY")
	})
}

func TestGetForexQuoteMapsPairToOandaSymbol(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OANDA:EUR_USD", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c": 1.0842}`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	quote, err := c.GetForexQuote(context.Background(), "EUR/USD")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1.0842, quote.Current)
}

func TestGetMarketNewsTruncatesToLimit(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "forex", r.URL.Query().Get("category"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"headline": "one", "datetime": 1741597200},
			{"headline": "two", "datetime": 1741597300},
			{"headline": "three", "datetime": 1741597400}
		]`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	items, err := c.GetMarketNews(context.Background(), "forex", 2)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "one", items[0].Headline)
}

func TestGetCompanyNewsSendsDateRange(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2025-03-03", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"headline": "earnings", "related": "AAPL"}]`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Act
	items, err := c.GetCompanyNews(context.Background(), "AAPL", from, to)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "earnings", items[0].Headline)
}

func TestNewsItemImpactBuckets(t *testing.T) {
	testCases := []struct {
		sentiment float64
		expected  string
	}{
		{0.5, "high"},
		{-0.4, "high"},
		{0.2, "medium"},
		{0.05, "low"},
		{0, "low"},
	}

	for _, tc := range testCases {
		item := NewsItem{Sentiment: tc.sentiment}
		assert.Equal(t, tc.expected, item.Impact(), "sentiment %v", tc.sentiment)
	}
}

func TestNewsItemPublishedAtFallsBackToNow(t *testing.T) {
	withTime := NewsItem{Datetime: 1741597200}
	assert.Equal(t, time.Unix(1741597200, 0).UTC(), withTime.PublishedAt())

	missing := NewsItem{}
	assert.WithinDuration(t, time.Now().UTC(), missing.PublishedAt(), time.Minute)
}
