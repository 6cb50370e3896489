package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://data.alpaca.markets/v2"

// ErrNoData signals that the provider has no data for the requested
// symbol or date range (unknown or delisted ticker, empty range).
// Transport failures are reported as ordinary errors instead.
var ErrNoData = errors.New("marketdata: no data available")

// Bar is one daily OHLC bar.
type Bar struct {
	Date  time.Time `json:"t"`
	Open  float64   `json:"o"`
	High  float64   `json:"h"`
	Low   float64   `json:"l"`
	Close float64   `json:"c"`
}

// Gateway defines the interface for the market data provider.
type Gateway interface {
	// LatestPrice returns the most recent trade price for a ticker.
	LatestPrice(ctx context.Context, ticker string) (float64, error)
	// History returns daily bars for [start, end], ordered oldest to newest.
	History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// Client is a client for an Alpaca-compatible market data REST API.
// It implements the Gateway interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ Gateway = (*Client)(nil)

// NewClient creates a new market data API client.
func NewClient(cfg *config.MarketData, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("APCA-API-KEY-ID", cfg.ApiKey).
		SetHeader("APCA-API-SECRET-KEY", cfg.SecretKey)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusNotFound {
				// The provider has nothing for this symbol or range.
				return nil, ErrNoData
			}
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

// latestTradeResponse represents the response from the latest trade endpoint.
type latestTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Price float64 `json:"p"`
	} `json:"trade"`
}

// LatestPrice fetches the most recent trade price for a ticker.
func (c *Client) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	req := c.client.R().
		SetResult(&latestTradeResponse{})

	resp, err := c.doRequest(ctx, "GET", "/stocks/"+ticker+"/trades/latest", req)
	if err != nil {
		return 0, fmt.Errorf("latest price for %s: %w", ticker, err)
	}

	result := resp.Result().(*latestTradeResponse)
	if result.Trade.Price <= 0 {
		return 0, fmt.Errorf("latest price for %s: %w", ticker, ErrNoData)
	}
	return result.Trade.Price, nil
}

// barsResponse represents the response from the daily bars endpoint.
type barsResponse struct {
	Bars   []Bar  `json:"bars"`
	Symbol string `json:"symbol"`
}

// History fetches daily OHLC bars for a ticker over a date range.
// Bars are returned in the provider's order, oldest first.
func (c *Client) History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	req := c.client.R().
		SetResult(&barsResponse{}).
		SetQueryParams(map[string]string{
			"timeframe":  "1Day",
			"start":      start.Format("2006-01-02"),
			"end":        end.Format("2006-01-02"),
			"adjustment": "raw",
			"limit":      "10000",
		})

	resp, err := c.doRequest(ctx, "GET", "/stocks/"+ticker+"/bars", req)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", ticker, err)
	}

	result := resp.Result().(*barsResponse)
	if len(result.Bars) == 0 {
		return nil, fmt.Errorf("history for %s: %w", ticker, ErrNoData)
	}
	return result.Bars, nil
}
