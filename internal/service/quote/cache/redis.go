package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisCache shares quotes between processes. A nil client disables it:
// every Get misses and every Set is dropped.
type RedisCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	errorTTL  time.Duration
	namespace string
}

func NewRedisCache(rdb *redis.Client, ttl, errorTTL time.Duration, namespace string) *RedisCache {
	ttl, errorTTL = normalizeTTL(ttl, errorTTL)
	if namespace == "" {
		namespace = "quotes"
	}
	return &RedisCache{
		rdb:       rdb,
		ttl:       ttl,
		errorTTL:  errorTTL,
		namespace: namespace,
	}
}

type redisQuote struct {
	Symbol    string              `json:"symbol"`
	AssetType entity.AssetType    `json:"asset_type"`
	Price     decimal.Decimal     `json:"price"`
	Change24h decimal.NullDecimal `json:"change_24h"`
	FetchedAt time.Time           `json:"fetched_at"`
	Source    string              `json:"source"`
	Outcome   quote.Outcome       `json:"outcome"`
	Error     string              `json:"error,omitempty"`
}

func toRedisQuote(q quote.Quote) redisQuote {
	r := redisQuote{
		Symbol:    q.Symbol,
		AssetType: q.AssetType,
		Price:     q.Price,
		Change24h: q.Change24h,
		FetchedAt: q.FetchedAt,
		Source:    q.Source,
		Outcome:   q.Outcome,
	}
	if q.Err != nil {
		r.Error = q.Err.Error()
	}
	return r
}

func (r redisQuote) toQuote() quote.Quote {
	q := quote.Quote{
		Symbol:    r.Symbol,
		AssetType: r.AssetType,
		Price:     r.Price,
		Change24h: r.Change24h,
		FetchedAt: r.FetchedAt,
		Source:    r.Source,
		Outcome:   r.Outcome,
	}
	if !q.OK() {
		q.Err = fmt.Errorf("%s: %w", r.Error, r.Outcome.Err())
	}
	return q
}

func (c *RedisCache) Get(ctx context.Context, key entity.AssetKey) (quote.Quote, bool) {
	if c.rdb == nil {
		return quote.Quote{}, false
	}
	k := c.cacheKey(key)
	b, err := c.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("quote cache get failed", "key", k, "error", err)
		}
		return quote.Quote{}, false
	}
	var r redisQuote
	if err := json.Unmarshal(b, &r); err != nil {
		// 损坏的缓存直接删除
		_ = c.rdb.Del(ctx, k).Err()
		return quote.Quote{}, false
	}
	return r.toQuote(), true
}

func (c *RedisCache) Set(ctx context.Context, q quote.Quote) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(toRedisQuote(q))
	if err != nil {
		return
	}
	ttl := c.ttl
	if !q.OK() {
		ttl = c.errorTTL
	}
	k := c.cacheKey(q.Key())
	if err := c.rdb.Set(ctx, k, b, ttl).Err(); err != nil {
		slog.Warn("quote cache set failed", "key", k, "error", err)
	}
}

func (c *RedisCache) cacheKey(key entity.AssetKey) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, key.AssetType, safe(key.Symbol))
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
