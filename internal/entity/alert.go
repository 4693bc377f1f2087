package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction 触发方向
type Direction string

const (
	Above Direction = "above"
	Below Direction = "below"
)

func (d Direction) String() string {
	return string(d)
}

func (d Direction) Valid() bool {
	return d == Above || d == Below
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Alert 用户价格提醒, Id 由数据库分配且不复用
type Alert struct {
	Id          int64           `gorm:"primaryKey;autoIncrement"`
	OwnerID     string          `gorm:"not null;index"`
	Symbol      string          `gorm:"not null;index:alert_symbol_idx"`
	AssetType   AssetType       `gorm:"not null;index:alert_symbol_idx"`
	TargetPrice decimal.Decimal `gorm:"type:text;not null"`
	Direction   Direction       `gorm:"not null"`
	Paused      bool            `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
}

func (a Alert) Key() AssetKey {
	return AssetKey{Symbol: a.Symbol, AssetType: a.AssetType}
}

// ShouldTrigger is a level trigger: it looks at the current price only.
func (a Alert) ShouldTrigger(price decimal.Decimal) bool {
	if a.Paused {
		return false
	}
	switch a.Direction {
	case Above:
		return price.GreaterThanOrEqual(a.TargetPrice)
	case Below:
		return price.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}
