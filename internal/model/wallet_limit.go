package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitPeriod is the time range a spending limit applies to.
type LimitPeriod string

const (
	LimitPeriodDaily   LimitPeriod = "daily"
	LimitPeriodWeekly  LimitPeriod = "weekly"
	LimitPeriodMonthly LimitPeriod = "monthly"
	LimitPeriodYearly  LimitPeriod = "yearly"
)

func (p LimitPeriod) Valid() bool {
	switch p {
	case LimitPeriodDaily, LimitPeriodWeekly, LimitPeriodMonthly, LimitPeriodYearly:
		return true
	}
	return false
}

// WalletLimit is a spending ceiling, either for one category or general
// (nil category). Read-only input to the insight computations.
type WalletLimit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WalletID uint            `gorm:"index" json:"wallet_id"`
	Category *string         `gorm:"type:varchar(128)" json:"category,omitempty"`
	Amount   decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Period   LimitPeriod     `gorm:"type:varchar(16)" json:"period"`
}

func (WalletLimit) TableName() string {
	return "wallet_limits"
}
