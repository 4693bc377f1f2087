package repo

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAlertReq struct {
	OwnerID   string
	Symbol    string
	AssetType entity.AssetType
	Target    float64
	Direction entity.Direction
}

type AlertRepo interface {
	Create(ctx context.Context, req CreateAlertReq) (int64, error)
	Remove(ctx context.Context, ownerID string, id int64) error
	Pause(ctx context.Context, ownerID string, id int64) error
	Resume(ctx context.Context, ownerID string, id int64) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Alert, error)
	ClearByOwner(ctx context.Context, ownerID string) (int64, error)
	// ListActiveGroupedBySymbol 返回未暂停的提醒, 按标的分组以便去重拉取报价
	ListActiveGroupedBySymbol(ctx context.Context) (map[entity.AssetKey][]entity.Alert, error)
	// Consume removes a triggered alert if it is still active and reports
	// whether this call removed it. Paused or missing alerts are left alone.
	Consume(ctx context.Context, id int64) (bool, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{
		db: db,
	}
}

func (r *alertRepo) Create(ctx context.Context, req CreateAlertReq) (int64, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return 0, ErrInvalidOwner
	}
	if entity.SymbolKey(req.Symbol) == "" {
		return 0, ErrInvalidSymbol
	}
	if !req.AssetType.Valid() {
		return 0, ErrInvalidAssetType
	}
	if !req.Direction.Valid() {
		return 0, ErrInvalidDirection
	}
	if math.IsNaN(req.Target) || math.IsInf(req.Target, 0) || req.Target <= 0 {
		return 0, ErrInvalidTarget
	}

	alert := entity.Alert{
		OwnerID:     req.OwnerID,
		Symbol:      entity.CanonicalSymbol(req.Symbol, req.AssetType),
		AssetType:   req.AssetType,
		TargetPrice: decimal.NewFromFloat(req.Target),
		Direction:   req.Direction,
		CreatedAt:   time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 同一用户的相同提醒只保留最新一条, 新记录使用新 id
		err := tx.Where("owner_id = ? AND symbol = ? AND asset_type = ? AND direction = ? AND target_price = ?",
			alert.OwnerID, alert.Symbol, alert.AssetType, alert.Direction, alert.TargetPrice).
			Delete(&entity.Alert{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&alert).Error
	})
	if err != nil {
		return 0, err
	}
	return alert.Id, nil
}

func (r *alertRepo) Remove(ctx context.Context, ownerID string, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entity.Alert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepo) Pause(ctx context.Context, ownerID string, id int64) error {
	return r.setPaused(ctx, ownerID, id, true)
}

func (r *alertRepo) Resume(ctx context.Context, ownerID string, id int64) error {
	return r.setPaused(ctx, ownerID, id, false)
}

func (r *alertRepo) setPaused(ctx context.Context, ownerID string, id int64, paused bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alert entity.Alert
		err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&alert).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if alert.Paused == paused {
			return nil
		}
		return tx.Model(&entity.Alert{}).Where("id = ?", id).Update("paused", paused).Error
	})
}

func (r *alertRepo) ListByOwner(ctx context.Context, ownerID string) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id DESC").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepo) ClearByOwner(ctx context.Context, ownerID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&entity.Alert{})
	return res.RowsAffected, res.Error
}

func (r *alertRepo) ListActiveGroupedBySymbol(ctx context.Context) (map[entity.AssetKey][]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).Where("paused = ?", false).Order("id ASC").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return lo.GroupBy(alerts, func(item entity.Alert) entity.AssetKey {
		return item.Key()
	}), nil
}

// Consume 单条 DELETE 完成判断和删除, 与 Pause/Remove 并发时只有一方生效
func (r *alertRepo) Consume(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND paused = ?", id, false).Delete(&entity.Alert{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
