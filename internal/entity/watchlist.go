package entity

import (
	"time"
)

// WatchlistEntry 共享关注列表中的一项
type WatchlistEntry struct {
	Id         int64     `gorm:"primaryKey;autoIncrement"`
	Symbol     string    `gorm:"not null"`
	SymbolKey  string    `gorm:"not null;uniqueIndex:watchlist_identity_idx"`
	AssetType  AssetType `gorm:"not null;uniqueIndex:watchlist_identity_idx"`
	InsertedAt time.Time `gorm:"index"`
}

func (e WatchlistEntry) Key() AssetKey {
	return AssetKey{Symbol: e.Symbol, AssetType: e.AssetType}
}
