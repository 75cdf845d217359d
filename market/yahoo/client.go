// Package yahoo fetches daily closes from the Yahoo Finance chart API and
// turns them into a market.Quote.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
)

const (
	// DefaultBaseURL is the public chart API host
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultRange is the trailing window used for volatility
	DefaultRange = "1y"

	userAgent = "optsim/1.0"
)

// Client represents a Yahoo chart API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty)
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Bar is one daily close
type Bar struct {
	Time  time.Time
	Close float64
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Fetch returns the last close and the annualized volatility of daily
// returns over the trailing year. It implements market.Provider.
func (c *Client) Fetch(ctx context.Context, symbol string) (market.Quote, error) {
	bars, err := c.History(ctx, symbol, DefaultRange)
	if err != nil {
		return market.Quote{}, err
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	q, err := market.QuoteFromCloses(symbol, closes, bars[len(bars)-1].Time)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s: %w", errs.ErrUpstreamUnavailable, symbol, err)
	}
	return q, nil
}

// History fetches daily closes for symbol over rng (e.g. "1y", "6mo"),
// oldest first. Days without a close are skipped.
func (c *Client) History(ctx context.Context, symbol, rng string) ([]Bar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", errs.ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrUpstreamUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", errs.ErrUpstreamUnavailable, symbol, err)
	}

	var apiResp chartResponse
	decodeErr := json.Unmarshal(body, &apiResp)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && apiResp.Chart.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s", errs.ErrUpstreamUnavailable, symbol, apiResp.Chart.Error.Description)
		}
		return nil, fmt.Errorf("%w: %s: API error (status %d)", errs.ErrUpstreamUnavailable, symbol, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: decode response: %w", errs.ErrUpstreamUnavailable, symbol, decodeErr)
	}
	if apiResp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", errs.ErrUpstreamUnavailable, symbol, apiResp.Chart.Error.Description)
	}
	if len(apiResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: no data", errs.ErrUpstreamUnavailable, symbol)
	}

	bars := apiResp.Chart.Result[0].bars()
	if len(bars) < 2 {
		return nil, fmt.Errorf("%w: %s: only %d closes returned", errs.ErrUpstreamUnavailable, symbol, len(bars))
	}
	return bars, nil
}

// bars prefers adjusted closes, which account for splits and dividends.
func (r chartResult) bars() []Bar {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 && len(r.Indicators.Quote[0].Close) == len(r.Timestamp) {
		closes = r.Indicators.Quote[0].Close
	}

	out := make([]Bar, 0, len(closes))
	for i, c := range closes {
		if c == nil || *c <= 0 {
			continue
		}
		out = append(out, Bar{
			Time:  time.Unix(r.Timestamp[i], 0).UTC(),
			Close: *c,
		})
	}
	return out
}
