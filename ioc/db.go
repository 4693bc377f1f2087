package ioc

import (
	"fmt"

	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	type Config struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	}

	cfg := Config{
		Driver: "sqlite",
		DSN:    "candlekeeper.db?_busy_timeout=5000",
	}
	if err := viper.UnmarshalKey("database", &cfg); err != nil {
		panic(err)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		panic(fmt.Errorf("unsupported database driver %q", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		// sqlite 单写者, 所有写操作串行
		sqlDB.SetMaxOpenConns(1)
	}

	if err = repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}
