// Package twelvedata fetches stock quotes from the Twelve Data REST API.
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KNICEX/candlekeeper/internal/httpx"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/shopspring/decimal"
)

const (
	Name           = "twelvedata"
	DefaultBaseURL = "https://api.twelvedata.com"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient httpx.Doer
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient httpx.Doer) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ quote.Source = (*Client)(nil)

func (c *Client) Name() string {
	return Name
}

// Twelve Data 所有数值字段都是字符串; 出错时 HTTP 200 + status=error
type quoteResponse struct {
	Symbol        string              `json:"symbol"`
	Close         decimal.NullDecimal `json:"close"`
	PercentChange decimal.NullDecimal `json:"percent_change"`

	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) FetchQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	if ticker == "" {
		return quote.Quote{}, fmt.Errorf("%s: empty ticker: %w", Name, quote.ErrSymbolUnresolved)
	}

	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: build request: %w", Name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: %w", Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return quote.Quote{}, quote.StatusError(Name, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return quote.Quote{}, fmt.Errorf("%s: decode: %v: %w", Name, err, quote.ErrMalformedResponse)
	}
	if body.Status == "error" {
		return quote.Quote{}, fmt.Errorf("%s: %s: %w", Name, body.Message, quote.StatusError(Name, body.Code))
	}
	if !body.Close.Valid {
		return quote.Quote{}, fmt.Errorf("%s: no close for %q: %w", Name, ticker, quote.ErrMalformedResponse)
	}

	return quote.Quote{
		Price:     body.Close.Decimal,
		Change24h: body.PercentChange,
		FetchedAt: time.Now(),
		Source:    Name,
	}, nil
}
