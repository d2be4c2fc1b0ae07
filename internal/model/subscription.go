package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle is the recurrence unit of a subscription.
type BillingCycle string

const (
	BillingCycleDaily   BillingCycle = "daily"
	BillingCycleWeekly  BillingCycle = "weekly"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleDaily, BillingCycleWeekly, BillingCycleMonthly, BillingCycleYearly:
		return true
	}
	return false
}

// Subscription is a recurring-charge definition. While active, exactly one
// expense is materialized per cycle tick and NextBillingDate advances by
// one cycle unit. Subscriptions are deactivated on cancel, never deleted.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WalletID    uint            `gorm:"index" json:"wallet_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Description string          `gorm:"type:varchar(255)" json:"description"`

	BillingCycle BillingCycle `gorm:"type:varchar(16)" json:"billing_cycle"`
	DateStart    time.Time    `json:"date_start"`
	DateEnd      *time.Time   `json:"date_end,omitempty"`
	IsActive     bool         `gorm:"index;default:true" json:"is_active"`

	// NextBillingDate is date-only, truncated to midnight, so "due today"
	// is an exact match.
	NextBillingDate time.Time `gorm:"index" json:"next_billing_date"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
