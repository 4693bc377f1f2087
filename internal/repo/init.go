package repo

import (
	"github.com/KNICEX/candlekeeper/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Settings{}, &entity.WatchlistEntry{}, &entity.Alert{}, &entity.Trade{})
}
