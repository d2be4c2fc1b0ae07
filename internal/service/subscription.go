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

// SubscriptionService manages recurring-charge definitions and turns due
// cycles into ledger entries through the expense service.
type SubscriptionService struct {
	db       *gorm.DB
	wallets  repository.WalletRepository
	subs     repository.SubscriptionRepository
	expenses *ExpenseService
	expRepo  repository.ExpenseRepository
}

func NewSubscriptionService(db *gorm.DB, wallets repository.WalletRepository, subs repository.SubscriptionRepository, expenses *ExpenseService, expRepo repository.ExpenseRepository) *SubscriptionService {
	return &SubscriptionService{db: db, wallets: wallets, subs: subs, expenses: expenses, expRepo: expRepo}
}

// Midnight truncates t to the start of its day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextBillingDate advances one billing cycle and truncates to midnight.
// Monthly means one calendar month (Go's normalizing AddDate), yearly is
// 365 days.
func NextBillingDate(cycle model.BillingCycle, from time.Time) time.Time {
	from = Midnight(from)
	switch cycle {
	case model.BillingCycleDaily:
		return from.AddDate(0, 0, 1)
	case model.BillingCycleWeekly:
		return from.AddDate(0, 0, 7)
	case model.BillingCycleMonthly:
		return from.AddDate(0, 1, 0)
	case model.BillingCycleYearly:
		return from.AddDate(0, 0, 365)
	default:
		return from
	}
}

// nextBillingAfter advances cycle by cycle from the anchor until the
// result is not before today, so stale anchors never cause a burst of
// catch-up charges.
func nextBillingAfter(cycle model.BillingCycle, anchor, today time.Time) time.Time {
	next := NextBillingDate(cycle, anchor)
	for next.Before(today) {
		next = NextBillingDate(cycle, next)
	}
	return next
}

type CreateSubscriptionInput struct {
	Amount       decimal.Decimal    `json:"amount"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	BillingCycle model.BillingCycle `json:"billing_cycle"`
	DateStart    time.Time          `json:"date_start"`
	DateEnd      *time.Time         `json:"date_end,omitempty"`
}

// Create registers a subscription and records its first charge as the
// template entry (scheduled when the start date is in the future). Every
// later materialization clones that template.
func (s *SubscriptionService) Create(ctx context.Context, userID string, in CreateSubscriptionInput) (*model.Subscription, error) {
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if !in.BillingCycle.Valid() {
		return nil, fmt.Errorf("%w: unknown billing cycle %q", ErrInvalidInput, in.BillingCycle)
	}
	if in.DateStart.IsZero() {
		in.DateStart = time.Now()
	}
	if in.DateEnd != nil && in.DateEnd.Before(in.DateStart) {
		return nil, ErrInvalidRange
	}

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}

	today := Midnight(time.Now())
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          in.Amount,
		Description:     in.Description,
		BillingCycle:    in.BillingCycle,
		DateStart:       in.DateStart,
		DateEnd:         in.DateEnd,
		IsActive:        true,
		NextBillingDate: nextBillingAfter(in.BillingCycle, in.DateStart, today),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	_, err = s.expenses.create(ctx, wallet, CreateExpenseInput{
		Amount:         in.Amount,
		Type:           model.ExpenseTypeExpense,
		Description:    in.Description,
		Category:       in.Category,
		Date:           in.DateStart,
		Schedule:       in.DateStart.After(time.Now()),
		SubscriptionID: &sub.ID,
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Promote links an existing expense to a new monthly subscription. If the
// expense already carries a (presumably cancelled) subscription, that one
// is reactivated instead of creating a duplicate.
func (s *SubscriptionService) Promote(ctx context.Context, userID string, expenseID uint) (*model.Subscription, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	expense, err := s.expRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, expenseErr(err)
	}
	if expense.WalletID != wallet.ID {
		return nil, ErrForbidden
	}

	if expense.SubscriptionID != nil {
		return s.reactivate(ctx, *expense.SubscriptionID)
	}

	today := Midnight(time.Now())
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          expense.Amount,
		Description:     expense.Description,
		BillingCycle:    model.BillingCycleMonthly,
		DateStart:       expense.Date,
		IsActive:        true,
		NextBillingDate: nextBillingAfter(model.BillingCycleMonthly, expense.Date, today),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	expense.SubscriptionID = &sub.ID
	if err := s.expRepo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel deactivates; the definition and its provenance links survive.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string, subID uint) (*model.Subscription, error) {
	sub, err := s.resolveOwned(ctx, userID, subID)
	if err != nil {
		return nil, err
	}
	sub.IsActive = false
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Renew reactivates a cancelled subscription.
func (s *SubscriptionService) Renew(ctx context.Context, userID string, subID uint) (*model.Subscription, error) {
	if _, err := s.resolveOwned(ctx, userID, subID); err != nil {
		return nil, err
	}
	return s.reactivate(ctx, subID)
}

func (s *SubscriptionService) reactivate(ctx context.Context, subID uint) (*model.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, subID)
	if err != nil {
		return nil, subscriptionErr(err)
	}
	sub.IsActive = true
	today := Midnight(time.Now())
	if sub.NextBillingDate.Before(today) {
		sub.NextBillingDate = nextBillingAfter(sub.BillingCycle, sub.NextBillingDate, today)
	}
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) List(ctx context.Context, userID string) ([]model.Subscription, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	return s.subs.ListByWallet(ctx, wallet.ID)
}

// DueWithin lists the caller's active subscriptions billing in the next
// given number of days; the reminder job uses the same query across all
// wallets.
func (s *SubscriptionService) DueWithin(ctx context.Context, walletID uint, now time.Time, days int) ([]model.Subscription, error) {
	from := Midnight(now)
	to := from.AddDate(0, 0, days)
	subs, err := s.subs.DueWithin(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var mine []model.Subscription
	for _, sub := range subs {
		if sub.WalletID == walletID {
			mine = append(mine, sub)
		}
	}
	return mine, nil
}

// errCycleTaken signals that a concurrent or earlier run already advanced
// this subscription's billing date.
var errCycleTaken = errors.New("billing cycle already materialized")

// MaterializeDue charges every active subscription due today. Per
// subscription the billing-date advance and the ledger entry are one
// transaction, and the advance is guarded on the expected date, so a
// second run on the same day can never duplicate a charge. A missing
// template is logged and skipped without deactivating the subscription.
func (s *SubscriptionService) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	today := Midnight(now)
	due, err := s.subs.DueOn(ctx, today)
	if err != nil {
		return 0, err
	}

	charged := 0
	for i := range due {
		sub := due[i]
		if err := s.materialize(ctx, &sub, today, now); err != nil {
			if errors.Is(err, errCycleTaken) {
				continue
			}
			slog.Error("materializing subscription failed",
				"subscription_id", sub.ID, "wallet_id", sub.WalletID, "error", err)
			continue
		}
		charged++
	}
	return charged, nil
}

func (s *SubscriptionService) materialize(ctx context.Context, sub *model.Subscription, today, now time.Time) error {
	if sub.DateEnd != nil && today.After(Midnight(*sub.DateEnd)) {
		sub.IsActive = false
		if err := s.subs.Update(ctx, sub); err != nil {
			return err
		}
		slog.Info("subscription reached its end date", "subscription_id", sub.ID)
		return errCycleTaken
	}

	template, err := s.expRepo.LatestForSubscription(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("subscription has no template expense, skipping",
				"subscription_id", sub.ID, "wallet_id", sub.WalletID)
			return errCycleTaken
		}
		return err
	}

	wallet, err := s.wallets.GetByID(ctx, sub.WalletID)
	if err != nil {
		return walletErr(err)
	}

	next := NextBillingDate(sub.BillingCycle, sub.NextBillingDate)
	period := fmt.Sprintf("Billing period %s to %s",
		sub.NextBillingDate.Format("2006-01-02"), next.AddDate(0, 0, -1).Format("2006-01-02"))

	return repository.Atomic(s.db, func(tx *gorm.DB) error {
		won, err := s.subs.WithTx(tx).AdvanceBillingDate(ctx, sub.ID, sub.NextBillingDate, next)
		if err != nil {
			return err
		}
		if !won {
			return errCycleTaken
		}

		entry := &model.Expense{
			WalletID:                 wallet.ID,
			Amount:                   template.Amount,
			Type:                     template.Type,
			Description:              template.Description,
			Category:                 template.Category,
			Date:                     now,
			Schedule:                 false,
			BalanceBeforeInteraction: wallet.Balance,
			SubscriptionID:           &sub.ID,
			Note:                     appendNote(template.Note, period),
			Shop:                     template.Shop,
			Tags:                     template.Tags,
		}
		if entry.Type == model.ExpenseTypeRefunded {
			// A refunded template still represents a recurring charge.
			entry.Type = model.ExpenseTypeExpense
		}
		if err := s.expRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}
		return s.wallets.WithTx(tx).AddToBalance(ctx, wallet.ID, entry.AppliedDelta())
	})
}

func (s *SubscriptionService) resolveOwned(ctx context.Context, userID string, subID uint) (*model.Subscription, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	sub, err := s.subs.GetByID(ctx, subID)
	if err != nil {
		return nil, subscriptionErr(err)
	}
	if sub.WalletID != wallet.ID {
		return nil, ErrForbidden
	}
	return sub, nil
}

func subscriptionErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("subscription %w", ErrNotFound)
	}
	return err
}
