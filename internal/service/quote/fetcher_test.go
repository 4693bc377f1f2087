package quote

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu sync.Mutex
	m  map[entity.AssetKey]Quote
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[entity.AssetKey]Quote)}
}

func (c *mapCache) Get(_ context.Context, key entity.AssetKey) (Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.m[key]
	return q, ok
}

func (c *mapCache) Set(_ context.Context, q Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[q.Key()] = q
}

type panicSource struct{}

func (panicSource) Name() string { return "panic" }
func (panicSource) FetchQuote(context.Context, string) (Quote, error) {
	panic("boom")
}

// batchMock prices symbols through the wrapped MockSource and records each
// batch it was asked for.
type batchMock struct {
	*MockSource

	mu      sync.Mutex
	batches [][]string
	err     error
}

func (b *batchMock) FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	b.mu.Lock()
	b.batches = append(b.batches, append([]string(nil), symbols...))
	err := b.err
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := make(map[string]Quote, len(symbols))
	for _, symbol := range symbols {
		q, err := b.MockSource.FetchQuote(ctx, symbol)
		if err == nil {
			res[symbol] = q
		}
	}
	return res, nil
}

func (b *batchMock) Batches() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}

func btc() entity.AssetKey  { return entity.NewAssetKey("bitcoin", entity.AssetCrypto) }
func aapl() entity.AssetKey { return entity.NewAssetKey("AAPL", entity.AssetStock) }

func TestFetcher_FetchQuote(t *testing.T) {
	crypto := NewMockSource("crypto").SetPrice("bitcoin", 65000.5, 2.5)
	stock := NewMockSource("stock").SetPrice("AAPL", 189.3)
	f := NewFetcher(map[entity.AssetType]Source{
		entity.AssetCrypto: crypto,
		entity.AssetStock:  stock,
	})

	q := f.FetchQuote(context.Background(), entity.AssetKey{Symbol: "Bitcoin", AssetType: entity.AssetCrypto})
	require.True(t, q.OK())
	assert.Equal(t, "bitcoin", q.Symbol)
	assert.Equal(t, entity.AssetCrypto, q.AssetType)
	assert.True(t, decimal.NewFromFloat(65000.5).Equal(q.Price))
	assert.True(t, q.Change24h.Valid)
	assert.Equal(t, "crypto", q.Source)
	assert.False(t, q.FetchedAt.IsZero())

	q = f.FetchQuote(context.Background(), entity.AssetKey{Symbol: "aapl", AssetType: entity.AssetStock})
	require.True(t, q.OK())
	assert.Equal(t, "AAPL", q.Symbol)
	assert.False(t, q.Change24h.Valid, "stock source gave no change")
}

func TestFetcher_FailureOutcomes(t *testing.T) {
	src := NewMockSource("crypto").
		SetPrice("zero", 0).
		SetError("limited", StatusError("crypto", 429)).
		SetError("down", StatusError("crypto", 503))
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src})

	tests := []struct {
		symbol string
		want   Outcome
	}{
		{"unknown", OutcomeSymbolUnresolved},
		{"zero", OutcomeMalformedResponse},
		{"limited", OutcomeRateLimited},
		{"down", OutcomeProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			q := f.FetchQuote(context.Background(), entity.NewAssetKey(tt.symbol, entity.AssetCrypto))
			assert.False(t, q.OK())
			assert.Equal(t, tt.want, q.Outcome)
			assert.Error(t, q.Err)
			assert.True(t, q.Price.IsZero())
			assert.Equal(t, tt.symbol, q.Symbol)
		})
	}

	q := f.FetchQuote(context.Background(), aapl())
	assert.Equal(t, OutcomeSymbolUnresolved, q.Outcome, "no stock source registered")
}

func TestFetcher_Timeout(t *testing.T) {
	src := NewMockSource("slow").SetPrice("bitcoin", 1).SetDelay(time.Second)
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	q := f.FetchQuote(context.Background(), btc())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, OutcomeProviderTimeout, q.Outcome)
}

func TestFetcher_RecoversPanic(t *testing.T) {
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: panicSource{}})
	q := f.FetchQuote(context.Background(), btc())
	assert.Equal(t, OutcomeMalformedResponse, q.Outcome)
	assert.Equal(t, "panic", q.Source)
}

func TestFetcher_UsesCache(t *testing.T) {
	src := NewMockSource("crypto").SetPrice("bitcoin", 100)
	cache := newMapCache()
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src}, WithCache(cache))

	first := f.FetchQuote(context.Background(), btc())
	src.SetPrice("bitcoin", 200)
	second := f.FetchQuote(context.Background(), btc())

	assert.EqualValues(t, 1, src.Calls())
	assert.True(t, first.Price.Equal(second.Price))

	// failed quotes are cached as well, the cache decides how long they live
	f.FetchQuote(context.Background(), entity.NewAssetKey("missing", entity.AssetCrypto))
	f.FetchQuote(context.Background(), entity.NewAssetKey("missing", entity.AssetCrypto))
	assert.EqualValues(t, 2, src.Calls())
}

func TestFetcher_SingleFlight(t *testing.T) {
	src := NewMockSource("crypto").SetPrice("bitcoin", 100).SetDelay(200 * time.Millisecond)
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := f.FetchQuote(context.Background(), btc())
			assert.True(t, q.OK())
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, src.Calls())
}

func TestFetcher_FetchMany(t *testing.T) {
	crypto := NewMockSource("crypto").SetPrice("bitcoin", 65000).SetPrice("ethereum", 3000)
	stock := NewMockSource("stock").SetPrice("AAPL", 190)
	f := NewFetcher(map[entity.AssetType]Source{
		entity.AssetCrypto: crypto,
		entity.AssetStock:  stock,
	}, WithConcurrency(2))

	res := f.FetchMany(context.Background(), []entity.AssetKey{
		btc(),
		{Symbol: "BITCOIN", AssetType: entity.AssetCrypto},
		entity.NewAssetKey("ethereum", entity.AssetCrypto),
		aapl(),
		entity.NewAssetKey("nope", entity.AssetStock),
	})

	require.Len(t, res, 4)
	assert.True(t, res[btc()].OK())
	assert.True(t, res[aapl()].OK())
	assert.True(t, res[entity.NewAssetKey("ethereum", entity.AssetCrypto)].OK())
	assert.Equal(t, OutcomeSymbolUnresolved, res[entity.NewAssetKey("nope", entity.AssetStock)].Outcome)
	assert.EqualValues(t, 2, crypto.Calls(), "duplicate keys are fetched once")
}

func TestFetcher_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := NewMockSource("crypto").SetPrice("bitcoin", 65000).SetDelay(50 * time.Millisecond)
	cache := newMapCache()
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src}, WithCache(cache))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gone := f.FetchQuote(ctx, btc())
	assert.False(t, gone.OK())

	q := f.FetchQuote(context.Background(), btc())
	require.True(t, q.OK(), "err: %v", q.Err)
	assert.EqualValues(t, 1, src.Calls(), "second caller joins the running fetch or hits the cache")

	cached, ok := cache.Get(context.Background(), btc())
	require.True(t, ok)
	assert.True(t, cached.OK())
}

func TestFetcher_FetchManyBatches(t *testing.T) {
	src := &batchMock{MockSource: NewMockSource("crypto")}
	keys := make([]entity.AssetKey, 0, 12)
	for i := 0; i < 12; i++ {
		symbol := fmt.Sprintf("coin%d", i)
		src.SetPrice(symbol, float64(i+1))
		keys = append(keys, entity.NewAssetKey(symbol, entity.AssetCrypto))
	}
	keys = append(keys, entity.NewAssetKey("nope", entity.AssetCrypto))

	cache := newMapCache()
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: RateLimited(src, 30, 2)},
		WithCache(cache), WithBatchSize(10))

	res := f.FetchMany(context.Background(), keys)
	require.Len(t, res, 13)
	for _, key := range keys[:12] {
		assert.True(t, res[key].OK(), key.String())
	}
	assert.Equal(t, OutcomeSymbolUnresolved, res[entity.NewAssetKey("nope", entity.AssetCrypto)].Outcome)
	assert.Len(t, src.Batches(), 2, "13 symbols in chunks of 10")

	// 第二轮全部命中缓存
	res = f.FetchMany(context.Background(), keys)
	assert.Len(t, res, 13)
	assert.Len(t, src.Batches(), 2)
}

func TestFetcher_FetchManyBatchFailure(t *testing.T) {
	src := &batchMock{MockSource: NewMockSource("crypto"), err: StatusError("crypto", 429)}
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src})

	res := f.FetchMany(context.Background(), []entity.AssetKey{btc(), entity.NewAssetKey("ethereum", entity.AssetCrypto)})
	require.Len(t, res, 2)
	for _, q := range res {
		assert.Equal(t, OutcomeRateLimited, q.Outcome)
	}
}

func TestFetcher_FetchManyCancelledCallerSkipsCache(t *testing.T) {
	src := &batchMock{MockSource: NewMockSource("crypto").SetPrice("bitcoin", 1)}
	cache := newMapCache()
	f := NewFetcher(map[entity.AssetType]Source{entity.AssetCrypto: src}, WithCache(cache))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.FetchMany(ctx, []entity.AssetKey{btc()})
	assert.False(t, res[btc()].OK())

	_, ok := cache.Get(context.Background(), btc())
	assert.False(t, ok)
}

func TestFetcher_FetchManyEmpty(t *testing.T) {
	f := NewFetcher(nil)
	assert.Empty(t, f.FetchMany(context.Background(), nil))
}

func TestRateLimited(t *testing.T) {
	src := NewMockSource("crypto").SetPrice("bitcoin", 1)
	limited := RateLimited(src, 60, 1)
	assert.Equal(t, "crypto", limited.Name())

	_, err := limited.FetchQuote(context.Background(), "bitcoin")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.FetchQuote(ctx, "bitcoin")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualValues(t, 1, src.Calls())

	assert.Same(t, Source(src), RateLimited(src, 0, 1))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeOK, Classify(nil))
	assert.Equal(t, OutcomeProviderTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, OutcomeSymbolUnresolved, Classify(StatusError("x", 404)))
	assert.Equal(t, OutcomeProviderTimeout, Classify(StatusError("x", 504)))
	assert.Equal(t, OutcomeProviderUnavailable, Classify(assert.AnError))
	assert.ErrorIs(t, OutcomeRateLimited.Err(), ErrRateLimited)
	assert.NoError(t, OutcomeOK.Err())
}
