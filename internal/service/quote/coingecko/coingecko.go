// Package coingecko fetches crypto quotes from the CoinGecko simple price API.
package coingecko

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
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	Name           = "coingecko"
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// https://docs.coingecko.com/reference/authentication
	apiKeyHeader = "x-cg-demo-api-key"
)

type Client struct {
	baseURL    string
	vsCurrency string
	httpClient httpx.Doer
	header     http.Header
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

func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set(apiKeyHeader, key)
		}
	}
}

// WithVsCurrency sets the quote currency, usd by default.
func WithVsCurrency(currency string) Option {
	return func(c *Client) {
		if currency != "" {
			c.vsCurrency = strings.ToLower(currency)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		vsCurrency: "usd",
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ quote.BatchSource = (*Client)(nil)

func (c *Client) Name() string {
	return Name
}

// FetchQuote symbol 为 CoinGecko coin id, 例如 bitcoin
func (c *Client) FetchQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	id := normalizeID(symbol)
	if id == "" {
		return quote.Quote{}, fmt.Errorf("%s: empty id: %w", Name, quote.ErrSymbolUnresolved)
	}

	body, err := c.simplePrice(ctx, []string{id})
	if err != nil {
		return quote.Quote{}, err
	}
	fields, ok := body[id]
	if !ok {
		return quote.Quote{}, fmt.Errorf("%s: unknown id %q: %w", Name, id, quote.ErrSymbolUnresolved)
	}
	q, ok := c.toQuote(fields)
	if !ok {
		return quote.Quote{}, fmt.Errorf("%s: no %s price for %q: %w", Name, c.vsCurrency, id, quote.ErrMalformedResponse)
	}
	return q, nil
}

// FetchQuotes prices all ids with one request. Unknown ids and ids without a
// price are left out of the result.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]quote.Quote, error) {
	ids := lo.Uniq(lo.Compact(lo.Map(symbols, func(item string, index int) string {
		return normalizeID(item)
	})))
	res := make(map[string]quote.Quote, len(symbols))
	if len(ids) == 0 {
		return res, nil
	}

	body, err := c.simplePrice(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, symbol := range symbols {
		fields, ok := body[normalizeID(symbol)]
		if !ok {
			continue
		}
		if q, ok := c.toQuote(fields); ok {
			res[symbol] = q
		}
	}
	return res, nil
}

// {"bitcoin":{"usd":65000.1,"usd_24h_change":-1.23}}
func (c *Client) simplePrice(ctx context.Context, ids []string) (map[string]map[string]decimal.NullDecimal, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", c.vsCurrency)
	q.Set("include_24hr_change", "true")
	u := c.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", Name, err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, quote.StatusError(Name, resp.StatusCode)
	}

	var body map[string]map[string]decimal.NullDecimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode: %v: %w", Name, err, quote.ErrMalformedResponse)
	}
	return body, nil
}

func (c *Client) toQuote(fields map[string]decimal.NullDecimal) (quote.Quote, bool) {
	price, ok := fields[c.vsCurrency]
	if !ok || !price.Valid {
		return quote.Quote{}, false
	}
	return quote.Quote{
		Price:     price.Decimal,
		Change24h: fields[c.vsCurrency+"_24h_change"],
		FetchedAt: time.Now(),
		Source:    Name,
	}, true
}

func normalizeID(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
