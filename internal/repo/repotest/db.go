// Package repotest opens throwaway stores for tests of packages built on repo.
package repotest

import (
	"testing"

	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 单连接的内存 SQLite, 已建表, 测试结束时关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.InitTables(db), "failed to migrate tables")
	return db
}

type Repos struct {
	Settings  repo.SettingsRepo
	Watchlist repo.WatchlistRepo
	Alerts    repo.AlertRepo
	Trades    repo.TradeRepo
}

func NewRepos(t testing.TB) Repos {
	db := NewDB(t)
	return Repos{
		Settings:  repo.NewSettingsRepo(db),
		Watchlist: repo.NewWatchlistRepo(db),
		Alerts:    repo.NewAlertRepo(db),
		Trades:    repo.NewTradeRepo(db),
	}
}
