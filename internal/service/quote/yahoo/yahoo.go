// Package yahoo fetches stock quotes from the Yahoo Finance chart endpoint.
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

	"github.com/KNICEX/candlekeeper/internal/httpx"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/shopspring/decimal"
)

const (
	Name           = "yahoo"
	DefaultBaseURL = "https://query1.finance.yahoo.com"
)

type Client struct {
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

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpx.New(10 * time.Second),
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

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string              `json:"symbol"`
				RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
				ChartPreviousClose decimal.NullDecimal `json:"chartPreviousClose"`
				PreviousClose      decimal.NullDecimal `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) FetchQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	if ticker == "" {
		return quote.Quote{}, fmt.Errorf("%s: empty ticker: %w", Name, quote.ErrSymbolUnresolved)
	}

	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: build request: %w", Name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: %w", Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return quote.Quote{}, quote.StatusError(Name, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return quote.Quote{}, fmt.Errorf("%s: decode: %v: %w", Name, err, quote.ErrMalformedResponse)
	}
	if e := body.Chart.Error; e != nil {
		return quote.Quote{}, fmt.Errorf("%s: %s: %s: %w", Name, e.Code, e.Description, quote.ErrSymbolUnresolved)
	}
	if len(body.Chart.Result) == 0 {
		return quote.Quote{}, fmt.Errorf("%s: no result for %q: %w", Name, ticker, quote.ErrSymbolUnresolved)
	}

	meta := body.Chart.Result[0].Meta
	if !meta.RegularMarketPrice.Valid {
		return quote.Quote{}, fmt.Errorf("%s: no market price for %q: %w", Name, ticker, quote.ErrMalformedResponse)
	}
	price := meta.RegularMarketPrice.Decimal

	prev := meta.ChartPreviousClose
	if !prev.Valid || !prev.Decimal.IsPositive() {
		prev = meta.PreviousClose
	}

	return quote.Quote{
		Price:     price,
		Change24h: changePercent(price, prev),
		FetchedAt: time.Now(),
		Source:    Name,
	}, nil
}

// changePercent (price - prev) / prev * 100, 前收盘价缺失时为空
func changePercent(price decimal.Decimal, prev decimal.NullDecimal) decimal.NullDecimal {
	if !prev.Valid || !prev.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price.Sub(prev.Decimal).Div(prev.Decimal).Mul(decimal.NewFromInt(100)))
}
