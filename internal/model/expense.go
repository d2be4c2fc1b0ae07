package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseType classifies a ledger entry. Despite the name an Expense row
// also covers incomes; refunded marks a cancelled entry whose balance
// effect has been reversed.
type ExpenseType string

const (
	ExpenseTypeExpense  ExpenseType = "expense"
	ExpenseTypeIncome   ExpenseType = "income"
	ExpenseTypeRefunded ExpenseType = "refunded"
)

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseTypeExpense, ExpenseTypeIncome, ExpenseTypeRefunded:
		return true
	}
	return false
}

// Expense is a single ledger entry belonging to exactly one wallet.
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WalletID uint            `gorm:"index" json:"wallet_id"`
	Amount   decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Type     ExpenseType     `gorm:"type:varchar(16);index" json:"type"`

	Description string `gorm:"type:varchar(255)" json:"description"`
	// Category is hierarchical, "topic:subtopic".
	Category string `gorm:"type:varchar(128);index" json:"category"`

	// Date is the effective date. For scheduled entries it lies in the
	// future and the entry stays out of the balance until the midnight
	// job realizes it.
	Date     time.Time `gorm:"index" json:"date"`
	Schedule bool      `gorm:"index;default:false" json:"schedule"`

	// BalanceBeforeInteraction snapshots the wallet balance as it was
	// without this entry's effect, for audit and undo.
	BalanceBeforeInteraction decimal.Decimal `gorm:"type:decimal(14,2)" json:"balance_before_interaction"`

	// Provenance link for entries materialized from a subscription.
	SubscriptionID *uint `gorm:"index" json:"subscription_id,omitempty"`

	Note            string  `gorm:"type:text" json:"note"`
	Shop            string  `gorm:"type:varchar(128)" json:"shop"`
	Tags            string  `gorm:"type:varchar(255)" json:"tags"`
	SpontaneousRate float64 `gorm:"default:0" json:"spontaneous_rate"`
	Location        *string `gorm:"type:varchar(255)" json:"location,omitempty"`

	Subexpenses []Subexpense `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"subexpenses,omitempty"`
}

func (Expense) TableName() string {
	return "expenses"
}

// AppliedDelta is the signed amount this entry currently contributes to
// its wallet's balance. Unrealized scheduled entries and refunded entries
// contribute nothing.
func (e *Expense) AppliedDelta() decimal.Decimal {
	if e.Schedule {
		return decimal.Zero
	}
	switch e.Type {
	case ExpenseTypeExpense:
		return e.Amount.Neg()
	case ExpenseTypeIncome:
		return e.Amount
	default:
		return decimal.Zero
	}
}

// Subexpense is one line of an itemized breakdown of its parent entry.
type Subexpense struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ExpenseID uint `gorm:"index" json:"expense_id"`

	Amount      decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Category    string          `gorm:"type:varchar(128)" json:"category"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
}

func (Subexpense) TableName() string {
	return "subexpenses"
}
