package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/service/monitor"
	"github.com/KNICEX/candlekeeper/internal/service/tracker"
	"github.com/KNICEX/candlekeeper/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// 敏感配置只走环境变量也能生效
var secretKeys = []string{
	"discord.token",
	"database.dsn",
	"quote.crypto.coingecko.api_key",
	"quote.crypto.binance.api_key",
	"quote.crypto.binance.api_secret",
	"quote.stock.twelvedata.api_key",
	"quote.cache.redis.password",
}

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.yaml", "specify config file")
	pflag.Parse()

	viper.SetEnvPrefix("CANDLEKEEPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range secretKeys {
		if err := viper.BindEnv(key); err != nil {
			panic(err)
		}
	}

	viper.SetConfigFile(*file)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
}

func main() {
	initViper()
	ioc.InitLogger()

	db := ioc.InitDB()
	settingsRepo := repo.NewSettingsRepo(db)
	watchlistRepo := repo.NewWatchlistRepo(db)
	alertRepo := repo.NewAlertRepo(db)
	tradeRepo := repo.NewTradeRepo(db)

	fetcher := ioc.InitQuoteFetcher()
	messenger := ioc.InitMessenger()
	dispatcher := ioc.InitDispatcher(messenger, settingsRepo)

	refresher := monitor.NewWatchlistRefresher(settingsRepo, watchlistRepo, fetcher, messenger)
	evaluator := monitor.NewAlertEvaluator(alertRepo, fetcher, monitor.WithNotifier(dispatcher))

	svc := tracker.NewService(settingsRepo, watchlistRepo, alertRepo, tradeRepo, fetcher, refresher)
	server := ioc.InitWebServer(svc)
	if server != nil {
		server.Start()
	}

	scheduler := ioc.InitScheduler(refresher, evaluator)
	scheduler.Start()
	slog.Info("candlekeeper started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	scheduler.Stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("web server shutdown", "error", err)
		}
	}
}
