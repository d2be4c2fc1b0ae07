package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
)

// Anomaly detection thresholds: today must be at least twice the trailing
// average and above an absolute floor so trivially small bases do not
// produce noise.
var (
	anomalyFactor = decimal.NewFromInt(2)
	anomalyFloor  = decimal.NewFromInt(20)
)

// InsightService computes read-only analytics over the ledger. Nothing in
// here mutates state.
type InsightService struct {
	expenses repository.ExpenseRepository
	limits   repository.WalletLimitRepository
}

func NewInsightService(expenses repository.ExpenseRepository, limits repository.WalletLimitRepository) *InsightService {
	return &InsightService{expenses: expenses, limits: limits}
}

// BudgetStatus derives the remaining-spend signals for the wallet at now.
func (s *InsightService) BudgetStatus(ctx context.Context, wallet *model.Wallet, now time.Time) (*BudgetStatus, error) {
	monthly, source, err := s.MonthlyBudget(ctx, wallet, now)
	if err != nil {
		return nil, err
	}

	days := decimal.NewFromInt(int64(daysInMonth(now)))
	daily := monthly.Div(days).Round(2)
	weekly := daily.Mul(decimal.NewFromInt(7))

	dayStart := Midnight(now)
	weekStart := startOfWeek(now)
	monthStart := startOfMonth(now)
	end := dayStart.AddDate(0, 0, 1)

	spentToday, err := s.expenses.SumSpent(ctx, wallet.ID, dayStart, end)
	if err != nil {
		return nil, err
	}
	spentWeek, err := s.expenses.SumSpent(ctx, wallet.ID, weekStart, end)
	if err != nil {
		return nil, err
	}
	spentMonth, err := s.expenses.SumSpent(ctx, wallet.ID, monthStart, end)
	if err != nil {
		return nil, err
	}

	daysLeftWeek := 7 - int(dayStart.Sub(weekStart).Hours()/24)
	daysLeftMonth := daysInMonth(now) - now.Day() + 1

	status := &BudgetStatus{
		Source:             source,
		MonthlyBudget:      monthly,
		WeeklyBudget:       weekly,
		DailyBudget:        daily,
		SpentToday:         spentToday,
		SpentThisWeek:      spentWeek,
		SpentThisMonth:     spentMonth,
		RemainingToday:     daily.Sub(spentToday),
		RemainingThisWeek:  weekly.Sub(spentWeek),
		RemainingThisMonth: monthly.Sub(spentMonth),
		CanSpendToday: canSpendToday(daily, weekly, monthly,
			spentToday, spentWeek, spentMonth, daysLeftWeek, daysLeftMonth),
	}
	return status, nil
}

// AnomalyReport flags a day whose spend is far above the trailing 30-day
// average.
type AnomalyReport struct {
	Flagged      bool            `json:"flagged"`
	SpentToday   decimal.Decimal `json:"spent_today"`
	DailyAverage decimal.Decimal `json:"daily_average"`
}

func (s *InsightService) CheckAnomaly(ctx context.Context, wallet *model.Wallet, now time.Time) (*AnomalyReport, error) {
	dayStart := Midnight(now)
	spentToday, err := s.expenses.SumSpent(ctx, wallet.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	trailing, err := s.expenses.SumSpent(ctx, wallet.ID, dayStart.AddDate(0, 0, -30), dayStart)
	if err != nil {
		return nil, err
	}
	average := trailing.Div(decimal.NewFromInt(30)).Round(2)

	report := &AnomalyReport{
		SpentToday:   spentToday,
		DailyAverage: average,
	}
	report.Flagged = spentToday.GreaterThanOrEqual(average.Mul(anomalyFactor)) &&
		spentToday.GreaterThanOrEqual(anomalyFloor)
	return report, nil
}

// PeriodSummary aggregates realized spending over one reporting window.
type PeriodSummary struct {
	From          time.Time                  `json:"from"`
	To            time.Time                  `json:"to"`
	Total         decimal.Decimal            `json:"total"`
	TopCategories []repository.CategoryTotal `json:"top_categories"`
}

func (s *InsightService) DailySummary(ctx context.Context, wallet *model.Wallet, now time.Time) (*PeriodSummary, error) {
	from := Midnight(now)
	return s.summary(ctx, wallet, from, from.AddDate(0, 0, 1))
}

func (s *InsightService) WeeklySummary(ctx context.Context, wallet *model.Wallet, now time.Time) (*PeriodSummary, error) {
	// Reported on Monday for the week just finished.
	to := startOfWeek(now)
	return s.summary(ctx, wallet, to.AddDate(0, 0, -7), to)
}

func (s *InsightService) MonthlySummary(ctx context.Context, wallet *model.Wallet, now time.Time) (*PeriodSummary, error) {
	to := startOfMonth(now)
	return s.summary(ctx, wallet, to.AddDate(0, -1, 0), to)
}

func (s *InsightService) summary(ctx context.Context, wallet *model.Wallet, from, to time.Time) (*PeriodSummary, error) {
	totals, err := s.expenses.CategoryTotals(ctx, wallet.ID, from, to)
	if err != nil {
		return nil, err
	}
	sum := &PeriodSummary{From: from, To: to, Total: decimal.Zero}
	for _, t := range totals {
		sum.Total = sum.Total.Add(t.Total)
	}
	if len(totals) > 3 {
		totals = totals[:3]
	}
	sum.TopCategories = totals
	return sum, nil
}

// TopSpendingGroups clusters the window's realized expenses by similar
// description and returns the heaviest groups.
func (s *InsightService) TopSpendingGroups(ctx context.Context, wallet *model.Wallet, from, to time.Time, limit int) ([]SpendingGroup, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	expenses, err := s.expenses.ListRealizedInRange(ctx, wallet.ID, from, to)
	if err != nil {
		return nil, err
	}
	groups := ClusterExpenses(expenses)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}
