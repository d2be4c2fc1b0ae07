package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averyk/lifeledger/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBillingDate(t *testing.T) {
	cases := []struct {
		name  string
		cycle model.BillingCycle
		from  time.Time
		want  time.Time
	}{
		{"daily", model.BillingCycleDaily, date(2026, 3, 10), date(2026, 3, 11)},
		{"weekly", model.BillingCycleWeekly, date(2026, 3, 10), date(2026, 3, 17)},
		{"monthly", model.BillingCycleMonthly, date(2026, 1, 15), date(2026, 2, 15)},
		// One calendar month; Go normalizes the overflowing day.
		{"monthly end of month", model.BillingCycleMonthly, date(2025, 1, 31), date(2025, 3, 3)},
		{"yearly", model.BillingCycleYearly, date(2025, 3, 10), date(2026, 3, 10)},
		{"truncates to midnight", model.BillingCycleDaily,
			time.Date(2026, 3, 10, 13, 45, 12, 0, time.UTC), date(2026, 3, 11)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, NextBillingDate(tc.cycle, tc.from).Equal(tc.want),
				"got %s, want %s", NextBillingDate(tc.cycle, tc.from), tc.want)
		})
	}
}

func TestNextBillingAfterSkipsMissedCycles(t *testing.T) {
	// A stale anchor advances in one step past today instead of charging
	// every missed cycle.
	got := nextBillingAfter(model.BillingCycleMonthly, date(2026, 1, 5), date(2026, 4, 10))
	assert.True(t, got.Equal(date(2026, 5, 5)), "got %s", got)

	got = nextBillingAfter(model.BillingCycleWeekly, date(2026, 4, 6), date(2026, 4, 10))
	assert.True(t, got.Equal(date(2026, 4, 13)), "got %s", got)
}

func TestSubscriptionCreateSeedsTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := env.seedWallet(t, "u1", "100")

	sub, err := env.subs.Create(ctx, "u1", CreateSubscriptionInput{
		Amount:       dec("15"),
		Description:  "Music streaming",
		Category:     "entertainment:streaming",
		BillingCycle: model.BillingCycleMonthly,
		DateStart:    time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.False(t, sub.NextBillingDate.Before(Midnight(time.Now())))

	// The first charge lands as a realized template entry.
	template, err := env.expRepo.LatestForSubscription(ctx, sub.ID)
	require.NoError(t, err)
	requireAmount(t, "15", template.Amount)
	assert.False(t, template.Schedule)
	requireAmount(t, "85", env.balance(t, wallet.ID))
}

func TestSubscriptionCreateFutureStartIsScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := env.seedWallet(t, "u1", "100")

	sub, err := env.subs.Create(ctx, "u1", CreateSubscriptionInput{
		Amount:       dec("15"),
		Description:  "Gym membership",
		Category:     "health:fitness",
		BillingCycle: model.BillingCycleMonthly,
		DateStart:    time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	template, err := env.expRepo.LatestForSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, template.Schedule)
	requireAmount(t, "100", env.balance(t, wallet.ID))
}

func TestMaterializeDueExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := env.seedWallet(t, "u1", "100")

	today := Midnight(time.Now())
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          dec("15"),
		Description:     "Music streaming",
		BillingCycle:    model.BillingCycleMonthly,
		DateStart:       today.AddDate(0, -1, 0),
		IsActive:        true,
		NextBillingDate: today,
	}
	require.NoError(t, env.subRepo.Create(ctx, sub))
	_, err := env.expenses.Create(ctx, "u1", CreateExpenseInput{
		Amount:         dec("15"),
		Type:           model.ExpenseTypeExpense,
		Description:    "Music streaming",
		Category:       "entertainment:streaming",
		Date:           sub.DateStart,
		SubscriptionID: &sub.ID,
	})
	require.NoError(t, err)
	requireAmount(t, "85", env.balance(t, wallet.ID))

	charged, err := env.subs.MaterializeDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, charged)
	requireAmount(t, "70", env.balance(t, wallet.ID))

	entry, err := env.expRepo.LatestForSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Contains(t, entry.Note, "Billing period")

	reloaded, err := env.subRepo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NextBillingDate.After(today))

	// Same-day rerun: the billing date moved, nothing is due anymore.
	charged, err = env.subs.MaterializeDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, charged)
	requireAmount(t, "70", env.balance(t, wallet.ID))
}

func TestMaterializePastEndDateDeactivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := env.seedWallet(t, "u1", "100")

	today := Midnight(time.Now())
	ended := today.AddDate(0, 0, -1)
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          dec("15"),
		Description:     "Trial service",
		BillingCycle:    model.BillingCycleMonthly,
		DateStart:       today.AddDate(0, -2, 0),
		DateEnd:         &ended,
		IsActive:        true,
		NextBillingDate: today,
	}
	require.NoError(t, env.subRepo.Create(ctx, sub))

	charged, err := env.subs.MaterializeDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, charged)
	requireAmount(t, "100", env.balance(t, wallet.ID))

	reloaded, err := env.subRepo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestPromoteAndReactivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedWallet(t, "u1", "100")

	expense, err := env.expenses.Create(ctx, "u1", CreateExpenseInput{
		Amount:      dec("9.99"),
		Type:        model.ExpenseTypeExpense,
		Description: "News subscription",
		Category:    "entertainment:streaming",
		Date:        time.Now(),
	})
	require.NoError(t, err)

	sub, err := env.subs.Promote(ctx, "u1", expense.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillingCycleMonthly, sub.BillingCycle)
	assert.True(t, sub.IsActive)

	linked, err := env.expRepo.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.SubscriptionID)
	assert.Equal(t, sub.ID, *linked.SubscriptionID)

	cancelled, err := env.subs.Cancel(ctx, "u1", sub.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.IsActive)

	// Promoting the same expense again revives its subscription instead
	// of creating a duplicate.
	again, err := env.subs.Promote(ctx, "u1", expense.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.False(t, again.NextBillingDate.Before(Midnight(time.Now())))
}

func TestSubscriptionCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedWallet(t, "u1", "100")

	_, err := env.subs.Create(ctx, "u1", CreateSubscriptionInput{
		Amount:       dec("-1"),
		BillingCycle: model.BillingCycleMonthly,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.subs.Create(ctx, "u1", CreateSubscriptionInput{
		Amount:       dec("5"),
		BillingCycle: "fortnightly",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	start := time.Now()
	end := start.AddDate(0, 0, -10)
	_, err = env.subs.Create(ctx, "u1", CreateSubscriptionInput{
		Amount:       dec("5"),
		Description:  "Backwards",
		BillingCycle: model.BillingCycleMonthly,
		DateStart:    start,
		DateEnd:      &end,
	})
	require.ErrorIs(t, err, ErrInvalidRange)
}
