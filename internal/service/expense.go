package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
)

// ExpenseService owns the balance-mutation invariant: every path that
// changes a wallet balance (user entries, scheduled realization,
// subscription materialization, wallet corrections) goes through it, and
// each mutation pairs the ledger write with a server-side balance
// increment inside one transaction.
type ExpenseService struct {
	db       *gorm.DB
	wallets  repository.WalletRepository
	expenses repository.ExpenseRepository
}

func NewExpenseService(db *gorm.DB, wallets repository.WalletRepository, expenses repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{db: db, wallets: wallets, expenses: expenses}
}

type SubexpenseInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type CreateExpenseInput struct {
	Amount          decimal.Decimal   `json:"amount"`
	Type            model.ExpenseType `json:"type"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	Date            time.Time         `json:"date"`
	Schedule        bool              `json:"schedule"`
	SubscriptionID  *uint             `json:"subscription_id,omitempty"`
	Note            string            `json:"note"`
	Shop            string            `json:"shop"`
	Tags            string            `json:"tags"`
	SpontaneousRate float64           `json:"spontaneous_rate"`
	Location        *string           `json:"location,omitempty"`
	Subexpenses     []SubexpenseInput `json:"subexpenses,omitempty"`
}

func (in *CreateExpenseInput) validate() error {
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown expense type %q", ErrInvalidInput, in.Type)
	}
	if in.SpontaneousRate < 0 || in.SpontaneousRate > 1 {
		return fmt.Errorf("%w: spontaneous rate must be within [0,1]", ErrInvalidInput)
	}
	sum := decimal.Zero
	for _, sub := range in.Subexpenses {
		if sub.Amount.IsNegative() {
			return fmt.Errorf("%w: subexpense amount must not be negative", ErrInvalidInput)
		}
		sum = sum.Add(sub.Amount)
	}
	if sum.GreaterThan(in.Amount) {
		return fmt.Errorf("%w: subexpenses exceed the entry amount", ErrInvalidInput)
	}
	return nil
}

// Create persists a new ledger entry for the caller's wallet. A scheduled
// entry with a future effective date is stored without touching the
// balance; everything else applies its signed delta immediately.
func (s *ExpenseService) Create(ctx context.Context, userID string, in CreateExpenseInput) (*model.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	return s.create(ctx, wallet, in)
}

// create is the authoritative balance-mutation primitive. The wallet and
// subscription services call it with an already-resolved wallet.
func (s *ExpenseService) create(ctx context.Context, wallet *model.Wallet, in CreateExpenseInput) (*model.Expense, error) {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	deferred := in.Schedule && date.After(time.Now())

	expense := &model.Expense{
		WalletID:                 wallet.ID,
		Amount:                   in.Amount,
		Type:                     in.Type,
		Description:              in.Description,
		Category:                 in.Category,
		Date:                     date,
		Schedule:                 deferred,
		BalanceBeforeInteraction: wallet.Balance,
		SubscriptionID:           in.SubscriptionID,
		Note:                     in.Note,
		Shop:                     in.Shop,
		Tags:                     in.Tags,
		SpontaneousRate:          in.SpontaneousRate,
		Location:                 in.Location,
	}
	for _, sub := range in.Subexpenses {
		expense.Subexpenses = append(expense.Subexpenses, model.Subexpense{
			Amount:      sub.Amount,
			Category:    sub.Category,
			Description: sub.Description,
		})
	}

	err := repository.Atomic(s.db, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Create(ctx, expense); err != nil {
			return err
		}
		return s.wallets.WithTx(tx).AddToBalance(ctx, wallet.ID, expense.AppliedDelta())
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

type UpdateExpenseInput struct {
	Amount          decimal.Decimal   `json:"amount"`
	Type            model.ExpenseType `json:"type"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	Date            time.Time         `json:"date"`
	Note            string            `json:"note"`
	Shop            string            `json:"shop"`
	Tags            string            `json:"tags"`
	SpontaneousRate float64           `json:"spontaneous_rate"`
}

// Update rewrites an entry. The wallet ends up at "balance as if the old
// entry never existed, plus the new entry's effect"; that reconstructed
// baseline is also persisted as the new BalanceBeforeInteraction.
// Editing the type to refunded reverses the original effect without
// applying a new one.
func (s *ExpenseService) Update(ctx context.Context, userID string, expenseID uint, in UpdateExpenseInput) (*model.Expense, error) {
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown expense type %q", ErrInvalidInput, in.Type)
	}

	wallet, expense, err := s.resolveOwned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	origDelta := expense.AppliedDelta()
	baseline := wallet.Balance.Sub(origDelta)

	expense.Amount = in.Amount
	expense.Type = in.Type
	expense.Description = in.Description
	expense.Category = in.Category
	if !in.Date.IsZero() {
		expense.Date = in.Date
	}
	expense.Note = in.Note
	expense.Shop = in.Shop
	expense.Tags = in.Tags
	expense.SpontaneousRate = in.SpontaneousRate
	expense.BalanceBeforeInteraction = baseline

	newDelta := expense.AppliedDelta()

	err = repository.Atomic(s.db, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Update(ctx, expense); err != nil {
			return err
		}
		return s.wallets.WithTx(tx).AddToBalance(ctx, wallet.ID, newDelta.Sub(origDelta))
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes the entry and reverses its applied effect. Refunded
// entries were already reversed at refund time and scheduled entries were
// never applied, so neither touches the balance again.
func (s *ExpenseService) Delete(ctx context.Context, userID string, expenseID uint) error {
	wallet, expense, err := s.resolveOwned(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	reversal := expense.AppliedDelta().Neg()
	return repository.Atomic(s.db, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Delete(ctx, expense.ID); err != nil {
			return err
		}
		return s.wallets.WithTx(tx).AddToBalance(ctx, wallet.ID, reversal)
	})
}

// Refund re-types the entry to refunded and reverses its balance effect,
// all inside one transaction. Refunding an already-refunded entry is an
// explicit error, never a second reversal.
func (s *ExpenseService) Refund(ctx context.Context, userID string, expenseID uint) (*model.Expense, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}

	var refunded *model.Expense
	err = repository.Atomic(s.db, func(tx *gorm.DB) error {
		expense, err := s.expenses.WithTx(tx).GetByID(ctx, expenseID)
		if err != nil {
			return expenseErr(err)
		}
		if expense.WalletID != wallet.ID {
			return ErrForbidden
		}
		if expense.Type == model.ExpenseTypeRefunded {
			return ErrAlreadyRefunded
		}

		reversal := expense.AppliedDelta().Neg()
		expense.Type = model.ExpenseTypeRefunded
		expense.Schedule = false
		expense.Note = appendNote(expense.Note, "Refunded at "+time.Now().Format("2006-01-02 15:04:05"))

		if err := s.expenses.WithTx(tx).Update(ctx, expense); err != nil {
			return err
		}
		if err := s.wallets.WithTx(tx).AddToBalance(ctx, wallet.ID, reversal); err != nil {
			return err
		}
		refunded = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// RealizeDue applies every scheduled entry whose effective date has
// arrived. The schedule flip is guarded, so running the job twice never
// applies an entry twice. One entry failing does not stop the rest.
func (s *ExpenseService) RealizeDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.expenses.DueScheduled(ctx, now)
	if err != nil {
		return 0, err
	}

	realized := 0
	for i := range due {
		expense := due[i]
		err := repository.Atomic(s.db, func(tx *gorm.DB) error {
			won, err := s.expenses.WithTx(tx).MarkRealized(ctx, expense.ID)
			if err != nil || !won {
				return err
			}
			expense.Schedule = false
			return s.wallets.WithTx(tx).AddToBalance(ctx, expense.WalletID, expense.AppliedDelta())
		})
		if err != nil {
			slog.Error("realizing scheduled expense failed",
				"expense_id", expense.ID, "wallet_id", expense.WalletID, "error", err)
			continue
		}
		realized++
	}
	return realized, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID string, expenseID uint) (*model.Expense, error) {
	_, expense, err := s.resolveOwned(ctx, userID, expenseID)
	return expense, err
}

// List returns the caller's entries matching the filter.
func (s *ExpenseService) List(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]model.Expense, int64, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, walletErr(err)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.StartDate.After(filter.EndDate) {
		return nil, 0, ErrInvalidRange
	}
	filter.WalletID = wallet.ID
	return s.expenses.List(ctx, filter)
}

// MonthStatistics aggregates one calendar month per category.
type MonthStatistics struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryShare `json:"categories"`
}

type CategoryShare struct {
	repository.CategoryTotal
	Percentage float64 `json:"percentage"`
}

func (s *ExpenseService) MonthStatistics(ctx context.Context, userID string, year, month int) (*MonthStatistics, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month out of range", ErrInvalidInput)
	}
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	totals, err := s.expenses.CategoryTotals(ctx, wallet.ID, from, to)
	if err != nil {
		return nil, err
	}

	stats := &MonthStatistics{Year: year, Month: month, Total: decimal.Zero}
	for _, t := range totals {
		stats.Total = stats.Total.Add(t.Total)
	}
	for _, t := range totals {
		share := CategoryShare{CategoryTotal: t}
		if stats.Total.IsPositive() {
			pct, _ := t.Total.Div(stats.Total).Mul(decimal.NewFromInt(100)).Float64()
			share.Percentage = pct
		}
		stats.Categories = append(stats.Categories, share)
	}
	return stats, nil
}

func (s *ExpenseService) resolveOwned(ctx context.Context, userID string, expenseID uint) (*model.Wallet, *model.Expense, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, walletErr(err)
	}
	expense, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, nil, expenseErr(err)
	}
	if expense.WalletID != wallet.ID {
		return nil, nil, ErrForbidden
	}
	return wallet, expense, nil
}

func walletErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("wallet %w", ErrNotFound)
	}
	return err
}

func expenseErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("expense %w", ErrNotFound)
	}
	return err
}

func appendNote(note, line string) string {
	if note == "" {
		return line
	}
	return note + "\n" + line
}
