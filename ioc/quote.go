package ioc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/httpx"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/KNICEX/candlekeeper/internal/service/quote/binance"
	"github.com/KNICEX/candlekeeper/internal/service/quote/cache"
	"github.com/KNICEX/candlekeeper/internal/service/quote/coingecko"
	"github.com/KNICEX/candlekeeper/internal/service/quote/twelvedata"
	"github.com/KNICEX/candlekeeper/internal/service/quote/yahoo"
	"github.com/spf13/viper"
)

func InitQuoteFetcher() *quote.Fetcher {
	type Config struct {
		Timeout     time.Duration `mapstructure:"timeout"`
		Concurrency int           `mapstructure:"concurrency"`
		BatchSize   int           `mapstructure:"batch_size"`
	}

	cfg := Config{
		Timeout:     quote.DefaultTimeout,
		Concurrency: quote.DefaultConcurrency,
		BatchSize:   quote.DefaultBatchSize,
	}
	if err := viper.UnmarshalKey("quote", &cfg); err != nil {
		panic(err)
	}

	client := httpx.New(cfg.Timeout)
	sources := map[entity.AssetType]quote.Source{
		entity.AssetCrypto: InitCryptoSource(client),
		entity.AssetStock:  InitStockSource(client),
	}
	return quote.NewFetcher(sources,
		quote.WithCache(InitQuoteCache()),
		quote.WithTimeout(cfg.Timeout),
		quote.WithConcurrency(cfg.Concurrency),
		quote.WithBatchSize(cfg.BatchSize),
	)
}

func InitQuoteCache() quote.Cache {
	type Config struct {
		Backend  string        `mapstructure:"backend"`
		TTL      time.Duration `mapstructure:"ttl"`
		ErrorTTL time.Duration `mapstructure:"error_ttl"`
		Redis    struct {
			Namespace string `mapstructure:"namespace"`
		} `mapstructure:"redis"`
	}

	cfg := Config{
		Backend:  "memory",
		TTL:      cache.DefaultTTL,
		ErrorTTL: cache.DefaultErrorTTL,
	}
	if err := viper.UnmarshalKey("quote.cache", &cfg); err != nil {
		panic(err)
	}

	switch cfg.Backend {
	case "memory":
		return cache.NewMemoryCache(cfg.TTL, cfg.ErrorTTL)
	case "redis":
		return cache.NewRedisCache(InitRedis(), cfg.TTL, cfg.ErrorTTL, cfg.Redis.Namespace)
	default:
		panic(fmt.Errorf("unsupported quote cache backend %q", cfg.Backend))
	}
}

func InitCryptoSource(client httpx.Doer) quote.Source {
	type Config struct {
		Provider      string `mapstructure:"provider"`
		RatePerMinute int    `mapstructure:"rate_per_minute"`
		Coingecko     struct {
			BaseURL    string `mapstructure:"base_url"`
			ApiKey     string `mapstructure:"api_key"`
			VsCurrency string `mapstructure:"vs_currency"`
		} `mapstructure:"coingecko"`
		Binance struct {
			QuoteAsset string            `mapstructure:"quote_asset"`
			SymbolMap  map[string]string `mapstructure:"symbol_map"`
		} `mapstructure:"binance"`
	}

	// CoinGecko 免费额度约 30 次/分钟
	cfg := Config{Provider: coingecko.Name, RatePerMinute: 30}
	if err := viper.UnmarshalKey("quote.crypto", &cfg); err != nil {
		panic(err)
	}

	var src quote.Source
	switch cfg.Provider {
	case coingecko.Name:
		src = coingecko.New(
			coingecko.WithHTTPClient(client),
			coingecko.WithBaseURL(cfg.Coingecko.BaseURL),
			coingecko.WithAPIKey(cfg.Coingecko.ApiKey),
			coingecko.WithVsCurrency(cfg.Coingecko.VsCurrency),
		)
	case binance.Name:
		src = binance.New(InitBinanceCli(),
			binance.WithQuoteAsset(cfg.Binance.QuoteAsset),
			binance.WithSymbolMap(cfg.Binance.SymbolMap),
		)
	default:
		panic(fmt.Errorf("unsupported crypto quote provider %q", cfg.Provider))
	}
	slog.Info("crypto quote source", "provider", src.Name(), "rate_per_minute", cfg.RatePerMinute)
	return quote.RateLimited(src, cfg.RatePerMinute, burst(cfg.RatePerMinute))
}

func InitStockSource(client httpx.Doer) quote.Source {
	type Config struct {
		Provider      string `mapstructure:"provider"`
		RatePerMinute int    `mapstructure:"rate_per_minute"`
		Yahoo         struct {
			BaseURL string `mapstructure:"base_url"`
		} `mapstructure:"yahoo"`
		Twelvedata struct {
			BaseURL string `mapstructure:"base_url"`
			ApiKey  string `mapstructure:"api_key"`
		} `mapstructure:"twelvedata"`
	}

	cfg := Config{Provider: yahoo.Name, RatePerMinute: 60}
	if err := viper.UnmarshalKey("quote.stock", &cfg); err != nil {
		panic(err)
	}

	var src quote.Source
	switch cfg.Provider {
	case yahoo.Name:
		src = yahoo.New(yahoo.WithHTTPClient(client), yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
	case twelvedata.Name:
		if cfg.Twelvedata.ApiKey == "" {
			panic("no twelvedata api key set")
		}
		src = twelvedata.New(cfg.Twelvedata.ApiKey,
			twelvedata.WithHTTPClient(client),
			twelvedata.WithBaseURL(cfg.Twelvedata.BaseURL),
		)
	default:
		panic(fmt.Errorf("unsupported stock quote provider %q", cfg.Provider))
	}
	slog.Info("stock quote source", "provider", src.Name(), "rate_per_minute", cfg.RatePerMinute)
	return quote.RateLimited(src, cfg.RatePerMinute, burst(cfg.RatePerMinute))
}

// burst 一个 tick 内允许并发拉取的请求数
func burst(perMinute int) int {
	return max(1, min(perMinute/6, quote.DefaultConcurrency))
}
