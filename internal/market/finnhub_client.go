package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/netgee-k/mt5-v2/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client is a Finnhub REST API client for quotes and market news. The free
// tier allows 60 requests per minute, so every call goes through a limiter.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a new Finnhub API client.
func NewClient(cfg *config.Finnhub, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		logger:  logger,
		limiter: limiter,
	}
}

// Quote is a real-time price snapshot. Field names follow Finnhub's
// single-letter wire format.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote fetches the latest quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&quote)

	resp, err := c.doRequest(ctx, "/quote", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}

	return resp.Result().(*Quote), nil
}

// GetForexQuote fetches a quote for a currency pair like "EUR/USD".
// Finnhub addresses forex through the OANDA feed ("OANDA:EUR_USD").
func (c *Client) GetForexQuote(ctx context.Context, pair string) (*Quote, error) {
	symbol := "OANDA:" + strings.ReplaceAll(pair, "/", "_")
	return c.GetQuote(ctx, symbol)
}

// NewsItem is one article from the Finnhub news feeds.
type NewsItem struct {
	Headline  string  `json:"headline"`
	Summary   string  `json:"summary"`
	Source    string  `json:"source"`
	URL       string  `json:"url"`
	Image     string  `json:"image"`
	Related   string  `json:"related"` // comma-separated symbols
	Sentiment float64 `json:"sentiment"`
	Datetime  int64   `json:"datetime"` // unix seconds
}

// PublishedAt returns the article timestamp, falling back to now when the
// feed omitted it.
func (n *NewsItem) PublishedAt() time.Time {
	if n.Datetime == 0 {
		return time.Now().UTC()
	}
	return time.Unix(n.Datetime, 0).UTC()
}

// Impact buckets the article's sentiment into "high", "medium" or "low".
func (n *NewsItem) Impact() string {
	s := n.Sentiment
	if s < 0 {
		s = -s
	}
	switch {
	case s > 0.3:
		return "high"
	case s > 0.1:
		return "medium"
	default:
		return "low"
	}
}

// GetMarketNews fetches general market news for a category ("general",
// "forex", "crypto", ...), truncated to limit articles.
func (c *Client) GetMarketNews(ctx context.Context, category string, limit int) ([]NewsItem, error) {
	var items []NewsItem

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("category", category).
		SetResult(&items)

	resp, err := c.doRequest(ctx, "/news", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get market news: %w", err)
	}

	result := *resp.Result().(*[]NewsItem)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetCompanyNews fetches news for one symbol in a date range.
func (c *Client) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsItem, error) {
	var items []NewsItem

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetQueryParam("from", from.Format("2006-01-02")).
		SetQueryParam("to", to.Format("2006-01-02")).
		SetResult(&items)

	resp, err := c.doRequest(ctx, "/company-news", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get company news for %s: %w", symbol, err)
	}

	return *resp.Result().(*[]NewsItem), nil
}

// doRequest waits for the rate limiter, attaches the API token and runs the
// request.
func (c *Client) doRequest(ctx context.Context, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req.SetQueryParam("token", c.apiKey)

	c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url))
	resp, err := req.Execute("GET", url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
	}

	return resp, nil
}
