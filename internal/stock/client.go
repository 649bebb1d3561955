// Package stock is the client for the Finnhub quote API. One synchronous
// round trip per lookup; no retries, no caching.
package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tbraden/quoteboard/internal/models"
)

// ErrInvalidSymbol is returned when the upstream reports all-zero prices.
var ErrInvalidSymbol = errors.New("invalid symbol")

// UpstreamError is a non-success HTTP response from the quote upstream.
// The status code is forwarded to the API caller unchanged.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
	}
}

// quoteResponse is Finnhub's wire shape for GET /quote.
type quoteResponse struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote fetches the current quote for symbol. Finnhub answers 200 with
// all-zero price fields for symbols it does not know; that quirk is mapped
// to ErrInvalidSymbol here and nowhere else. A zero in a single field is
// not treated as an error (a halted instrument can legitimately report
// zeros, so the sentinel requires c, h, l and o to all be zero).
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		c.BaseURL, url.QueryEscape(symbol), url.QueryEscape(c.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var data quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}

	if data.Current == 0 && data.High == 0 && data.Low == 0 && data.Open == 0 {
		return nil, ErrInvalidSymbol
	}

	return &models.Quote{
		Symbol:        symbol,
		CurrentPrice:  data.Current,
		OpenPrice:     data.Open,
		HighPrice:     data.High,
		LowPrice:      data.Low,
		PreviousClose: data.PreviousClose,
		Timestamp:     data.Timestamp,
	}, nil
}
