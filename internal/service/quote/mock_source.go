package quote

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// MockSource 模拟报价源（用于测试）
type MockSource struct {
	name  string
	delay time.Duration

	mu     sync.Mutex
	prices map[string]decimal.Decimal
	change map[string]decimal.Decimal
	errs   map[string]error

	calls atomic.Int64
}

func NewMockSource(name string) *MockSource {
	return &MockSource{
		name:   name,
		prices: make(map[string]decimal.Decimal),
		change: make(map[string]decimal.Decimal),
		errs:   make(map[string]error),
	}
}

// SetPrice 设置价格, change 为 24h 涨跌幅百分比
func (m *MockSource) SetPrice(symbol string, price float64, change ...float64) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = decimal.NewFromFloat(price)
	delete(m.errs, symbol)
	if len(change) > 0 {
		m.change[symbol] = decimal.NewFromFloat(change[0])
	}
	return m
}

// SetError 让该 symbol 的请求返回 err
func (m *MockSource) SetError(symbol string, err error) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
	return m
}

// SetDelay 每次请求前等待 d, 期间响应 ctx 取消
func (m *MockSource) SetDelay(d time.Duration) *MockSource {
	m.delay = d
	return m
}

func (m *MockSource) Calls() int64 {
	return m.calls.Load()
}

func (m *MockSource) Name() string {
	return m.name
}

func (m *MockSource) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[symbol]; ok {
		return Quote{}, err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return Quote{}, ErrSymbolUnresolved
	}
	q := Quote{Price: price, Source: m.name}
	if c, ok := m.change[symbol]; ok {
		q.Change24h = decimal.NewNullDecimal(c)
	}
	return q, nil
}
