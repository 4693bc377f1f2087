package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade 交易想法记录, 只做登记, 不参与提醒
type Trade struct {
	Id         int64           `gorm:"primaryKey;autoIncrement"`
	OwnerID    string          `gorm:"not null;index"`
	Symbol     string          `gorm:"not null"`
	Entry      decimal.Decimal `gorm:"type:text;not null"`
	StopLoss   decimal.Decimal `gorm:"type:text;not null"`
	TakeProfit decimal.Decimal `gorm:"type:text;not null"`
	Notes      string
	CreatedAt  time.Time
}
