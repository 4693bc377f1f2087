package repo

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateTradeReq struct {
	OwnerID    string
	Symbol     string
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Notes      string
}

type TradeRepo interface {
	Create(ctx context.Context, req CreateTradeReq) (entity.Trade, error)
	Remove(ctx context.Context, ownerID string, id int64) error
	// List 返回全部记录, 最新的在前
	List(ctx context.Context) ([]entity.Trade, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Trade, error)
}

type tradeRepo struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) TradeRepo {
	return &tradeRepo{
		db: db,
	}
}

func (r *tradeRepo) Create(ctx context.Context, req CreateTradeReq) (entity.Trade, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return entity.Trade{}, ErrInvalidOwner
	}
	symbol := strings.ToUpper(entity.NormalizeSymbol(req.Symbol))
	if symbol == "" {
		return entity.Trade{}, ErrInvalidSymbol
	}
	for _, p := range []float64{req.Entry, req.StopLoss, req.TakeProfit} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return entity.Trade{}, ErrInvalidPrice
		}
	}

	trade := entity.Trade{
		OwnerID:    req.OwnerID,
		Symbol:     symbol,
		Entry:      decimal.NewFromFloat(req.Entry),
		StopLoss:   decimal.NewFromFloat(req.StopLoss),
		TakeProfit: decimal.NewFromFloat(req.TakeProfit),
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&trade).Error; err != nil {
		return entity.Trade{}, err
	}
	return trade, nil
}

func (r *tradeRepo) Remove(ctx context.Context, ownerID string, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entity.Trade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tradeRepo) List(ctx context.Context) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := r.db.WithContext(ctx).Order("id DESC").Find(&trades).Error
	return trades, err
}

func (r *tradeRepo) ListByOwner(ctx context.Context, ownerID string) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id DESC").Find(&trades).Error
	return trades, err
}
