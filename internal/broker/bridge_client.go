package broker

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/netgee-k/mt5-v2/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HistoryClient is the contract the journal core depends on: a time-windowed
// query for closed-deal history. Connectivity failures are this layer's
// responsibility; the core receives either a valid deal list or an error.
type HistoryClient interface {
	HistoryDeals(ctx context.Context, from, to time.Time) ([]Deal, error)
}

// BridgeClient talks to an MT5 bridge terminal over its REST API. The
// terminal itself runs next to the broker installation; this client only
// wraps its HTTP surface.
type BridgeClient struct {
	client   *resty.Client
	login    int64
	password string
	server   string
	logger   *zap.Logger
	limiter  *rate.Limiter
}

// ensure BridgeClient implements the interface
var _ HistoryClient = (*BridgeClient)(nil)

// NewBridgeClient creates a new MT5 bridge REST API client.
func NewBridgeClient(cfg *config.Broker, logger *zap.Logger) *BridgeClient {
	client := resty.New().SetBaseURL(cfg.BridgeURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &BridgeClient{
		client:   client,
		login:    cfg.Login,
		password: cfg.Password,
		server:   cfg.Server,
		logger:   logger,
		limiter:  limiter,
	}
}

// Ping checks connectivity with the bridge terminal.
func (c *BridgeClient) Ping(ctx context.Context) error {
	req := c.client.R().SetContext(ctx)
	if _, err := c.doRequest(ctx, "GET", "/ping", req); err != nil {
		return fmt.Errorf("failed to reach bridge terminal: %w", err)
	}
	return nil
}

// loginResponse is the bridge terminal's reply to a login request.
type loginResponse struct {
	Authorized bool   `json:"authorized"`
	Message    string `json:"message,omitempty"`
}

// Login authenticates the configured account against the broker server.
func (c *BridgeClient) Login(ctx context.Context) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"login":    c.login,
			"password": c.password,
			"server":   c.server,
		}).
		SetResult(&loginResponse{})

	resp, err := c.doRequest(ctx, "POST", "/login", req)
	if err != nil {
		c.logger.Error("Failed to log in to broker terminal", zap.Error(err))
		return fmt.Errorf("failed to log in to broker terminal: %w", err)
	}

	result := resp.Result().(*loginResponse)
	if !result.Authorized {
		return fmt.Errorf("broker rejected login %d on %s: %s", c.login, c.server, result.Message)
	}

	c.logger.Info("Connected to broker terminal",
		zap.Int64("login", c.login),
		zap.String("server", c.server))
	return nil
}

// HistoryDeals fetches all deals in the [from, to] window.
func (c *BridgeClient) HistoryDeals(ctx context.Context, from, to time.Time) ([]Deal, error) {
	var payloads []dealPayload

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("from", strconv.FormatInt(from.Unix(), 10)).
		SetQueryParam("to", strconv.FormatInt(to.Unix(), 10)).
		SetResult(&payloads).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/history/deals", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get deal history: %w", err)
	}

	result := resp.Result().(*[]dealPayload)
	deals := make([]Deal, 0, len(*result))
	for i := range *result {
		deals = append(deals, (*result)[i].toDeal())
	}

	c.logger.Debug("Fetched deal history",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("count", len(deals)))
	return deals, nil
}

// AccountInfo describes the connected broker account.
type AccountInfo struct {
	Login    int64   `json:"login"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Server   string  `json:"server"`
	Leverage int     `json:"leverage"`
}

// GetAccountInfo fetches balance and leverage details for the connected account.
func (c *BridgeClient) GetAccountInfo(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo

	req := c.client.R().
		SetContext(ctx).
		SetResult(&info).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/account", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	return resp.Result().(*AccountInfo), nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *BridgeClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
