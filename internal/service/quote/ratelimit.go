package quote

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitedSource struct {
	Source
	limiter *rate.Limiter
}

// RateLimited throttles calls to src to perMinute requests, allowing bursts
// of up to burst. A BatchSource stays a BatchSource. A non-positive perMinute
// returns src unchanged.
func RateLimited(src Source, perMinute int, burst int) Source {
	if perMinute <= 0 {
		return src
	}
	if burst <= 0 {
		burst = 1
	}
	limited := &rateLimitedSource{
		Source:  src,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
	if batch, ok := src.(BatchSource); ok {
		return &rateLimitedBatchSource{rateLimitedSource: limited, batch: batch}
	}
	return limited
}

func (s *rateLimitedSource) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	// Wait 在 ctx 截止前无法拿到令牌时直接返回错误
	if err := s.limiter.Wait(ctx); err != nil {
		return Quote{}, fmt.Errorf("%s: local limiter: %v: %w", s.Name(), err, ErrRateLimited)
	}
	return s.Source.FetchQuote(ctx, symbol)
}

type rateLimitedBatchSource struct {
	*rateLimitedSource
	batch BatchSource
}

// 一次批量请求只消耗一个令牌
func (s *rateLimitedBatchSource) FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: local limiter: %v: %w", s.Name(), err, ErrRateLimited)
	}
	return s.batch.FetchQuotes(ctx, symbols)
}
