// Package polymarket talks to the public Polymarket data-api and
// gamma-api. Trade and activity payloads are handed back loosely typed
// because the provider mixes string-encoded and numeric fields across
// endpoints; coercion is the normalizer's job.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pittdog/polymarket-copy-trading-bot/internal/domain"
)

// Default configuration values.
const (
	DefaultDataURL     = "https://data-api.polymarket.com"
	DefaultGammaURL    = "https://gamma-api.polymarket.com"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client is an HTTP client for the Polymarket public APIs.
type Client struct {
	dataURL     string
	gammaURL    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithDataURL overrides the data-api base URL.
func WithDataURL(u string) ClientOption {
	return func(c *Client) {
		c.dataURL = u
	}
}

// WithGammaURL overrides the gamma-api base URL.
func WithGammaURL(u string) ClientOption {
	return func(c *Client) {
		c.gammaURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Polymarket API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		dataURL:     DefaultDataURL,
		gammaURL:    DefaultGammaURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trades fetches one page of a trader's fills from the data-api.
func (c *Client) Trades(ctx context.Context, user string, limit, offset int) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var records []domain.RawRecord
	if err := c.get(ctx, c.dataURL+"/trades", params, &records); err != nil {
		return nil, fmt.Errorf("fetch trades for %s: %w", user, err)
	}
	return records, nil
}

// Activity fetches one page of a trader's activity feed (trades plus
// splits/merges/redeems) from the data-api.
func (c *Client) Activity(ctx context.Context, user string, limit, offset int) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("type", "TRADE")

	var records []domain.RawRecord
	if err := c.get(ctx, c.dataURL+"/activity", params, &records); err != nil {
		return nil, fmt.Errorf("fetch activity for %s: %w", user, err)
	}
	return records, nil
}

// gammaMarket mirrors the subset of the gamma-api market payload used
// for labeling.
type gammaMarket struct {
	ID          string `json:"id"`
	ConditionID string `json:"conditionId"`
	Question    string `json:"question"`
	Slug        string `json:"slug"`
}

// MarketByConditionID looks up market metadata for labeling output.
func (c *Client) MarketByConditionID(ctx context.Context, conditionID string) (*domain.Market, error) {
	params := url.Values{}
	params.Set("condition_ids", conditionID)

	var markets []gammaMarket
	if err := c.get(ctx, c.gammaURL+"/markets", params, &markets); err != nil {
		return nil, fmt.Errorf("fetch market %s: %w", conditionID, err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("market %s: not found", conditionID)
	}
	return toDomainMarket(markets[0]), nil
}

// MarketBySlug looks up market metadata by human-readable slug.
func (c *Client) MarketBySlug(ctx context.Context, slug string) (*domain.Market, error) {
	params := url.Values{}
	params.Set("slug", slug)

	var markets []gammaMarket
	if err := c.get(ctx, c.gammaURL+"/markets", params, &markets); err != nil {
		return nil, fmt.Errorf("fetch market slug %s: %w", slug, err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("market slug %s: not found", slug)
	}
	return toDomainMarket(markets[0]), nil
}

func toDomainMarket(m gammaMarket) *domain.Market {
	return &domain.Market{
		ID:          m.ID,
		ConditionID: m.ConditionID,
		Question:    m.Question,
		Slug:        m.Slug,
	}
}

// get performs a GET with retries and exponential backoff on transient
// failures (network errors, 429, 5xx).
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	target := endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		body, retryable, err := c.doGet(ctx, target)
		if err != nil {
			lastErr = err
			if !retryable {
				return err
			}
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

// doGet issues a single request. The second return reports whether the
// failure is worth retrying.
func (c *Client) doGet(ctx context.Context, target string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	default:
		return nil, false, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
