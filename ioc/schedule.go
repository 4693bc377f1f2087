package ioc

import (
	"time"

	"github.com/KNICEX/candlekeeper/internal/schedule"
	"github.com/KNICEX/candlekeeper/internal/service/monitor"
	"github.com/spf13/viper"
)

func InitScheduler(refresher *monitor.WatchlistRefresher, evaluator *monitor.AlertEvaluator) *schedule.Scheduler {
	type Config struct {
		WatchlistInterval time.Duration `mapstructure:"watchlist_interval"`
		AlertInterval     time.Duration `mapstructure:"alert_interval"`
		TickTimeout       time.Duration `mapstructure:"tick_timeout"`
	}

	cfg := Config{
		WatchlistInterval: time.Minute,
		AlertInterval:     time.Minute,
		TickTimeout:       schedule.DefaultTickTimeout,
	}
	if err := viper.UnmarshalKey("schedule", &cfg); err != nil {
		panic(err)
	}

	s := schedule.NewScheduler(schedule.WithTickTimeout(cfg.TickTimeout))
	if err := s.Every(cfg.WatchlistInterval, refresher); err != nil {
		panic(err)
	}
	if err := s.Every(cfg.AlertInterval, evaluator); err != nil {
		panic(err)
	}
	return s
}
