package quote

import (
	"context"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/shopspring/decimal"
)

// Outcome tags a Quote as usable or names why it is not.
type Outcome string

const (
	OutcomeOK                  Outcome = "ok"
	OutcomeSymbolUnresolved    Outcome = "symbol_unresolved"
	OutcomeRateLimited         Outcome = "rate_limited"
	OutcomeProviderTimeout     Outcome = "provider_timeout"
	OutcomeMalformedResponse   Outcome = "malformed_response"
	OutcomeProviderUnavailable Outcome = "provider_unavailable"
)

// Quote 报价, 不落库
type Quote struct {
	Symbol    string              `json:"symbol"`
	AssetType entity.AssetType    `json:"asset_type"`
	Price     decimal.Decimal     `json:"price"`
	Change24h decimal.NullDecimal `json:"change_24h"` // 百分比
	FetchedAt time.Time           `json:"fetched_at"`
	Source    string              `json:"source"`
	Outcome   Outcome             `json:"outcome"`
	Err       error               `json:"-"`
}

func (q Quote) OK() bool {
	return q.Outcome == OutcomeOK
}

func (q Quote) Key() entity.AssetKey {
	return entity.AssetKey{Symbol: q.Symbol, AssetType: q.AssetType}
}

// Failed builds the placeholder quote for a symbol whose fetch did not succeed.
func Failed(key entity.AssetKey, source string, err error) Quote {
	return Quote{
		Symbol:    key.Symbol,
		AssetType: key.AssetType,
		FetchedAt: time.Now(),
		Source:    source,
		Outcome:   Classify(err),
		Err:       err,
	}
}

// Source is one quote provider. Implementations return classified errors
// (see errors.go) and leave Symbol/AssetType normalisation to the Fetcher.
type Source interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

// BatchSource is a Source that can price many symbols with one request.
// Symbols missing from the result are unresolved; an error fails the whole
// batch.
type BatchSource interface {
	Source
	FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// Cache 报价缓存, 成功和失败使用不同的 TTL
type Cache interface {
	Get(ctx context.Context, key entity.AssetKey) (Quote, bool)
	Set(ctx context.Context, q Quote)
}

type noopCache struct{}

func (noopCache) Get(context.Context, entity.AssetKey) (Quote, bool) { return Quote{}, false }
func (noopCache) Set(context.Context, Quote)                         {}
