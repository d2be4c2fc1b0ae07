package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/model"
)

// BudgetStatus is the derived budget signal set for one wallet at one
// point in time.
type BudgetStatus struct {
	Source string `json:"source"`

	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	WeeklyBudget  decimal.Decimal `json:"weekly_budget"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`

	SpentToday     decimal.Decimal `json:"spent_today"`
	SpentThisWeek  decimal.Decimal `json:"spent_this_week"`
	SpentThisMonth decimal.Decimal `json:"spent_this_month"`

	RemainingToday     decimal.Decimal `json:"remaining_today"`
	RemainingThisWeek  decimal.Decimal `json:"remaining_this_week"`
	RemainingThisMonth decimal.Decimal `json:"remaining_this_month"`

	// CanSpendToday is the binding constraint: the tightest of the daily,
	// weekly-per-day and monthly-per-day remainders.
	CanSpendToday decimal.Decimal `json:"can_spend_today"`
}

// budgetSource is one strategy for deriving the monthly budget. The
// sources are tried in order; the first non-zero result wins.
type budgetSource struct {
	name    string
	compute func(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, error)
}

func (s *InsightService) budgetSources() []budgetSource {
	return []budgetSource{
		{
			name: "income_target",
			compute: func(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, error) {
				return wallet.Income.Mul(decimal.NewFromFloat(wallet.MonthlyPercentageTarget)), nil
			},
		},
		{
			name: "monthly_limits",
			compute: func(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, error) {
				limits, err := s.limits.ListByPeriod(ctx, wallet.ID, model.LimitPeriodMonthly)
				if err != nil {
					return decimal.Zero, err
				}
				sum := decimal.Zero
				for _, l := range limits {
					sum = sum.Add(l.Amount)
				}
				return sum, nil
			},
		},
		{
			name: "historical_average",
			compute: func(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, error) {
				monthStart := startOfMonth(now)
				spent, err := s.expenses.SumSpent(ctx, wallet.ID, monthStart.AddDate(0, -3, 0), monthStart)
				if err != nil {
					return decimal.Zero, err
				}
				return spent.Div(decimal.NewFromInt(3)).Round(2), nil
			},
		},
		{
			name: "balance_fraction",
			compute: func(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, error) {
				if !wallet.Balance.IsPositive() {
					return decimal.Zero, nil
				}
				return wallet.Balance.Mul(decimal.NewFromFloat(0.7)).Round(2), nil
			},
		},
	}
}

// MonthlyBudget walks the source chain and returns the first non-zero
// budget together with the source name.
func (s *InsightService) MonthlyBudget(ctx context.Context, wallet *model.Wallet, now time.Time) (decimal.Decimal, string, error) {
	for _, src := range s.budgetSources() {
		budget, err := src.compute(ctx, wallet, now)
		if err != nil {
			return decimal.Zero, "", err
		}
		if budget.IsPositive() {
			return budget, src.name, nil
		}
	}
	return decimal.Zero, "none", nil
}

// canSpendToday picks the tightest of the three granularities. Kept as a
// pure function over already-resolved budgets.
func canSpendToday(daily, weekly, monthly, spentToday, spentWeek, spentMonth decimal.Decimal, daysLeftWeek, daysLeftMonth int) decimal.Decimal {
	remainingToday := daily.Sub(spentToday)
	weeklyPerDay := weekly.Sub(spentWeek).Div(decimal.NewFromInt(int64(daysLeftWeek))).Round(2)
	monthlyPerDay := monthly.Sub(spentMonth).Div(decimal.NewFromInt(int64(daysLeftMonth))).Round(2)

	min := remainingToday
	if weeklyPerDay.LessThan(min) {
		min = weeklyPerDay
	}
	if monthlyPerDay.LessThan(min) {
		min = monthlyPerDay
	}
	return min
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// startOfWeek is the preceding Monday at midnight.
func startOfWeek(t time.Time) time.Time {
	day := Midnight(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func daysInMonth(t time.Time) int {
	return startOfMonth(t).AddDate(0, 1, -1).Day()
}
