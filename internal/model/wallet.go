package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-user monetary account. Balance is the authoritative
// running total and always equals the signed sum of the wallet's realized
// entries; only the expense service mutates it.
type Wallet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  string          `gorm:"type:varchar(64);uniqueIndex" json:"user_id"`
	Balance decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"balance"`

	// Monthly reference income and the fraction of it the user wants to
	// spend at most. Both feed the budget source chain.
	Income                  decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"income"`
	MonthlyPercentageTarget float64         `gorm:"default:0" json:"monthly_percentage_target"`
	PaycheckDate            *time.Time      `json:"paycheck_date,omitempty"`
}

func (Wallet) TableName() string {
	return "wallets"
}
