package repo

import (
	"context"
	"errors"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"gorm.io/gorm"
)

type WatchlistRepo interface {
	Add(ctx context.Context, symbol string, assetType entity.AssetType) (entity.WatchlistEntry, error)
	// Remove deletes every entry whose symbol matches case-insensitively.
	Remove(ctx context.Context, symbol string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]entity.WatchlistEntry, error)
}

type watchlistRepo struct {
	db *gorm.DB
}

func NewWatchlistRepo(db *gorm.DB) WatchlistRepo {
	return &watchlistRepo{
		db: db,
	}
}

func (r *watchlistRepo) Add(ctx context.Context, symbol string, assetType entity.AssetType) (entity.WatchlistEntry, error) {
	if !assetType.Valid() {
		return entity.WatchlistEntry{}, ErrInvalidAssetType
	}
	key := entity.SymbolKey(symbol)
	if key == "" {
		return entity.WatchlistEntry{}, ErrInvalidSymbol
	}

	entry := entity.WatchlistEntry{
		Symbol:     entity.CanonicalSymbol(symbol, assetType),
		SymbolKey:  key,
		AssetType:  assetType,
		InsertedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		err := tx.Model(&entity.WatchlistEntry{}).
			Where("symbol_key = ? AND asset_type = ?", key, assetType).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrDuplicateEntry
		}
		return tx.Create(&entry).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.WatchlistEntry{}, ErrDuplicateEntry
	}
	if err != nil {
		return entity.WatchlistEntry{}, err
	}
	return entry, nil
}

func (r *watchlistRepo) Remove(ctx context.Context, symbol string) error {
	key := entity.SymbolKey(symbol)
	if key == "" {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Where("symbol_key = ?", key).Delete(&entity.WatchlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *watchlistRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&entity.WatchlistEntry{}).Error
}

func (r *watchlistRepo) List(ctx context.Context) ([]entity.WatchlistEntry, error) {
	var entries []entity.WatchlistEntry
	err := r.db.WithContext(ctx).Order("inserted_at ASC, id ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
