package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
)

// WalletService manages the per-user wallet. It never writes the balance
// column itself: the initial balance and later balance edits are
// materialized as ledger entries through the expense service, so the
// balance stays derivable from the ledger.
type WalletService struct {
	wallets  repository.WalletRepository
	expenses *ExpenseService
}

func NewWalletService(wallets repository.WalletRepository, expenses *ExpenseService) *WalletService {
	return &WalletService{wallets: wallets, expenses: expenses}
}

// Create sets up the caller's wallet. A second wallet for the same user is
// a conflict. A non-zero initial balance becomes an income entry.
func (s *WalletService) Create(ctx context.Context, userID string, initialBalance, income decimal.Decimal, target float64) (*model.Wallet, error) {
	if initialBalance.IsNegative() || income.IsNegative() {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	if target < 0 || target > 1 {
		return nil, fmt.Errorf("%w: monthly target must be within [0,1]", ErrInvalidInput)
	}

	if _, err := s.wallets.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("wallet %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet := &model.Wallet{
		UserID:                  userID,
		Balance:                 decimal.Zero,
		Income:                  income,
		MonthlyPercentageTarget: target,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}

	if initialBalance.IsPositive() {
		_, err := s.expenses.create(ctx, wallet, CreateExpenseInput{
			Amount:      initialBalance,
			Type:        model.ExpenseTypeIncome,
			Description: "Initial balance",
			Category:    "finance:fees",
			Date:        time.Now(),
		})
		if err != nil {
			return nil, err
		}
		wallet.Balance = initialBalance
	}
	return wallet, nil
}

func (s *WalletService) Get(ctx context.Context, userID string) (*model.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	return wallet, nil
}

type UpdateWalletInput struct {
	Income                  *decimal.Decimal `json:"income,omitempty"`
	MonthlyPercentageTarget *float64         `json:"monthly_percentage_target,omitempty"`
	PaycheckDate            *time.Time       `json:"paycheck_date,omitempty"`
}

// Update changes the budgeting parameters, never the balance.
func (s *WalletService) Update(ctx context.Context, userID string, in UpdateWalletInput) (*model.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	if in.Income != nil {
		if in.Income.IsNegative() {
			return nil, fmt.Errorf("%w: income must not be negative", ErrInvalidInput)
		}
		wallet.Income = *in.Income
	}
	if in.MonthlyPercentageTarget != nil {
		if *in.MonthlyPercentageTarget < 0 || *in.MonthlyPercentageTarget > 1 {
			return nil, fmt.Errorf("%w: monthly target must be within [0,1]", ErrInvalidInput)
		}
		wallet.MonthlyPercentageTarget = *in.MonthlyPercentageTarget
	}
	if in.PaycheckDate != nil {
		wallet.PaycheckDate = in.PaycheckDate
	}
	if err := s.wallets.Update(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// SetBalance brings the balance to the requested value by recording a
// correction entry for the difference, keeping the ledger invariant
// intact.
func (s *WalletService) SetBalance(ctx context.Context, userID string, target decimal.Decimal) (*model.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}

	diff := target.Sub(wallet.Balance)
	if diff.IsZero() {
		return wallet, nil
	}

	in := CreateExpenseInput{
		Amount:      diff.Abs(),
		Type:        model.ExpenseTypeIncome,
		Description: "Balance correction",
		Category:    "finance:fees",
		Date:        time.Now(),
	}
	if diff.IsNegative() {
		in.Type = model.ExpenseTypeExpense
	}
	if _, err := s.expenses.create(ctx, wallet, in); err != nil {
		return nil, err
	}

	wallet.Balance = target
	return wallet, nil
}
