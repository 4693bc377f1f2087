// Package binance quotes crypto assets from Binance 24h ticker statistics.
package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

const Name = "binance"

const (
	codeTooManyRequests = -1003
	codeBadSymbol       = -1121
	codeIPBanned        = -1015
)

// Source 将 crypto symbol 映射为 Binance 交易对, 例如 bitcoin -> BTCUSDT
type Source struct {
	cli        *binance.Client
	quoteAsset string
	symbolMap  map[string]string
}

type Option func(*Source)

// WithQuoteAsset sets the pair suffix, USDT by default.
func WithQuoteAsset(asset string) Option {
	return func(s *Source) {
		if asset != "" {
			s.quoteAsset = strings.ToUpper(asset)
		}
	}
}

// WithSymbolMap maps canonical crypto ids to base assets, e.g. bitcoin -> BTC.
func WithSymbolMap(m map[string]string) Option {
	return func(s *Source) {
		for k, v := range m {
			s.symbolMap[strings.ToLower(k)] = strings.ToUpper(v)
		}
	}
}

func New(cli *binance.Client, opts ...Option) *Source {
	s := &Source{
		cli:        cli,
		quoteAsset: "USDT",
		symbolMap: map[string]string{
			"bitcoin":  "BTC",
			"ethereum": "ETH",
			"solana":   "SOL",
			"ripple":   "XRP",
			"dogecoin": "DOGE",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ quote.Source = (*Source)(nil)

func (s *Source) Name() string {
	return Name
}

func (s *Source) TradingPair(symbol string) string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	base, ok := s.symbolMap[symbol]
	if !ok {
		base = strings.ToUpper(symbol)
	}
	if strings.HasSuffix(base, s.quoteAsset) && base != s.quoteAsset {
		return base
	}
	return base + s.quoteAsset
}

func (s *Source) FetchQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	if strings.TrimSpace(symbol) == "" {
		return quote.Quote{}, fmt.Errorf("%s: empty symbol: %w", Name, quote.ErrSymbolUnresolved)
	}
	pair := s.TradingPair(symbol)

	stats, err := s.cli.NewListPriceChangeStatsService().Symbol(pair).Do(ctx)
	if err != nil {
		return quote.Quote{}, convertError(pair, err)
	}
	if len(stats) == 0 || stats[0] == nil {
		return quote.Quote{}, fmt.Errorf("%s: no ticker for %s: %w", Name, pair, quote.ErrSymbolUnresolved)
	}

	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: last price %q: %v: %w", Name, stats[0].LastPrice, err, quote.ErrMalformedResponse)
	}
	q := quote.Quote{
		Price:     price,
		FetchedAt: time.Now(),
		Source:    Name,
	}
	if change, err := decimal.NewFromString(stats[0].PriceChangePercent); err == nil {
		q.Change24h = decimal.NewNullDecimal(change)
	}
	return q, nil
}

func convertError(pair string, err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", Name, pair, err)
	}
	var kind error
	switch apiErr.Code {
	case codeBadSymbol:
		kind = quote.ErrSymbolUnresolved
	case codeTooManyRequests, codeIPBanned:
		kind = quote.ErrRateLimited
	default:
		kind = quote.ErrProviderUnavailable
	}
	return fmt.Errorf("%s: %s: code=%d msg=%s: %w", Name, pair, apiErr.Code, apiErr.Message, kind)
}
