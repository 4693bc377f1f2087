package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout     = 8 * time.Second
	DefaultConcurrency = 5
	DefaultBatchSize   = 50
)

// Fetcher routes quote requests to the Source registered for the asset type,
// going through the Cache first. It never fails: errors come back as a Quote
// with a non-ok Outcome.
type Fetcher struct {
	sources     map[entity.AssetType]Source
	cache       Cache
	timeout     time.Duration
	concurrency int
	batchSize   int

	group singleflight.Group
}

type Option func(f *Fetcher)

func WithCache(cache Cache) Option {
	return func(f *Fetcher) {
		if cache != nil {
			f.cache = cache
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithBatchSize caps how many symbols go into one BatchSource request.
func WithBatchSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

func NewFetcher(sources map[entity.AssetType]Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		sources:     sources,
		cache:       noopCache{},
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		batchSize:   DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchQuote returns the quote for one symbol, served from cache when fresh.
func (f *Fetcher) FetchQuote(ctx context.Context, key entity.AssetKey) Quote {
	key = entity.NewAssetKey(key.Symbol, key.AssetType)
	if q, ok := f.cache.Get(ctx, key); ok {
		return q
	}

	// both periodic tasks may ask for the same symbol at once. 共享的请求不跟随
	// 单个调用方取消, 只受 f.timeout 约束
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key.String(), func() (any, error) {
		q := f.fetch(shared, key)
		f.cache.Set(shared, q)
		return q, nil
	})
	select {
	case res := <-ch:
		return res.Val.(Quote)
	case <-ctx.Done():
		return Failed(key, "", ctx.Err())
	}
}

// FetchMany fetches every distinct key with bounded parallelism. The result
// holds one Quote per distinct key, failed ones included. Keys served by a
// BatchSource are priced in chunks of the batch size.
func (f *Fetcher) FetchMany(ctx context.Context, keys []entity.AssetKey) map[entity.AssetKey]Quote {
	keys = lo.Uniq(lo.Map(keys, func(item entity.AssetKey, index int) entity.AssetKey {
		return entity.NewAssetKey(item.Symbol, item.AssetType)
	}))

	var (
		mu      sync.Mutex
		res     = make(map[entity.AssetKey]Quote, len(keys))
		single  []entity.AssetKey
		batches = make(map[entity.AssetType][]entity.AssetKey)
	)
	for _, key := range keys {
		if _, ok := f.sources[key.AssetType].(BatchSource); !ok {
			single = append(single, key)
			continue
		}
		if q, ok := f.cache.Get(ctx, key); ok {
			res[key] = q
			continue
		}
		batches[key.AssetType] = append(batches[key.AssetType], key)
	}

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for assetType, pending := range batches {
		src := f.sources[assetType].(BatchSource)
		for _, chunk := range lo.Chunk(pending, f.batchSize) {
			g.Go(func() error {
				quotes := f.fetchBatch(ctx, src, chunk)
				mu.Lock()
				for k, q := range quotes {
					res[k] = q
				}
				mu.Unlock()
				return nil
			})
		}
	}
	for _, key := range single {
		g.Go(func() error {
			q := f.FetchQuote(ctx, key)
			mu.Lock()
			res[key] = q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return res
}

func (f *Fetcher) fetch(ctx context.Context, key entity.AssetKey) (q Quote) {
	src, ok := f.sources[key.AssetType]
	if !ok {
		return Failed(key, "", fmt.Errorf("no source for asset type %q: %w", key.AssetType, ErrSymbolUnresolved))
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("quote source panicked", "source", src.Name(), "symbol", key, "panic", r)
			q = Failed(key, src.Name(), fmt.Errorf("%s panicked: %v: %w", src.Name(), r, ErrMalformedResponse))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	got, err := src.FetchQuote(ctx, key.Symbol)
	return f.finish(ctx, src, key, got, err)
}

// fetchBatch runs on the caller's context, so its results are cached only
// when the caller is still around.
func (f *Fetcher) fetchBatch(ctx context.Context, src BatchSource, keys []entity.AssetKey) (res map[entity.AssetKey]Quote) {
	res = make(map[entity.AssetKey]Quote, len(keys))
	defer func() {
		if r := recover(); r != nil {
			slog.Error("quote source panicked", "source", src.Name(), "symbols", len(keys), "panic", r)
			err := fmt.Errorf("%s panicked: %v: %w", src.Name(), r, ErrMalformedResponse)
			for _, key := range keys {
				res[key] = Failed(key, src.Name(), err)
			}
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	symbols := lo.Map(keys, func(item entity.AssetKey, index int) string {
		return item.Symbol
	})
	quotes, err := src.FetchQuotes(fetchCtx, symbols)
	for _, key := range keys {
		var (
			q    Quote
			qErr = err
		)
		if err == nil {
			got, ok := quotes[key.Symbol]
			if ok {
				q = got
			} else {
				qErr = fmt.Errorf("%s: no quote for %q: %w", src.Name(), key.Symbol, ErrSymbolUnresolved)
			}
		}
		res[key] = f.finish(fetchCtx, src, key, q, qErr)
	}

	if ctx.Err() != nil {
		return res
	}
	for _, q := range res {
		f.cache.Set(ctx, q)
	}
	return res
}

// finish 统一校验并补全报价字段, ctx 是单次请求的超时 ctx
func (f *Fetcher) finish(ctx context.Context, src Source, key entity.AssetKey, q Quote, err error) Quote {
	if err == nil && !q.Price.IsPositive() {
		err = fmt.Errorf("%s returned non-positive price %s: %w", src.Name(), q.Price, ErrMalformedResponse)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrProviderTimeout) {
			err = fmt.Errorf("%w: %w", ErrProviderTimeout, err)
		}
		slog.Warn("failed to fetch quote", "source", src.Name(), "symbol", key, "error", err)
		return Failed(key, src.Name(), err)
	}

	q.Symbol = key.Symbol
	q.AssetType = key.AssetType
	q.Outcome = OutcomeOK
	q.Err = nil
	if q.Source == "" {
		q.Source = src.Name()
	}
	if q.FetchedAt.IsZero() {
		q.FetchedAt = time.Now()
	}
	return q
}
