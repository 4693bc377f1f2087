// Package cache holds quote.Cache implementations.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
)

const (
	DefaultTTL      = 45 * time.Second
	DefaultErrorTTL = 5 * time.Second
)

type memoryItem struct {
	quote    quote.Quote
	expireAt time.Time
}

// MemoryCache 进程内缓存, 失败的报价只保留 errorTTL
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[entity.AssetKey]memoryItem
	ttl      time.Duration
	errorTTL time.Duration
	now      func() time.Time
}

func NewMemoryCache(ttl, errorTTL time.Duration) *MemoryCache {
	ttl, errorTTL = normalizeTTL(ttl, errorTTL)
	return &MemoryCache{
		items:    make(map[entity.AssetKey]memoryItem),
		ttl:      ttl,
		errorTTL: errorTTL,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key entity.AssetKey) (quote.Quote, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return quote.Quote{}, false
	}
	if !c.now().Before(item.expireAt) {
		c.mu.Lock()
		// 可能已被并发 Set 覆盖
		if cur, ok := c.items[key]; ok && cur.expireAt.Equal(item.expireAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return quote.Quote{}, false
	}
	return item.quote, true
}

func (c *MemoryCache) Set(_ context.Context, q quote.Quote) {
	ttl := c.ttl
	if !q.OK() {
		ttl = c.errorTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[q.Key()] = memoryItem{quote: q, expireAt: c.now().Add(ttl)}
}

// Purge drops every expired entry.
func (c *MemoryCache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, item := range c.items {
		if !now.Before(item.expireAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func normalizeTTL(ttl, errorTTL time.Duration) (time.Duration, time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if errorTTL <= 0 {
		errorTTL = DefaultErrorTTL
	}
	return ttl, errorTTL
}
