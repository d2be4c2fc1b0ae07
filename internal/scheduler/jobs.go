package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/averyk/lifeledger/internal/infrastructure/push"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
	"github.com/averyk/lifeledger/internal/service"
)

// perUserTimeout bounds one user's work inside a batch job so a stuck
// iteration cannot stall the whole run.
const perUserTimeout = 30 * time.Second

// Jobs holds the scheduled batch entry points. Every per-user unit is
// isolated: a failure is logged and the batch moves on, and notifications
// already sent stand (at-least-once delivery).
type Jobs struct {
	users      *repository.UserRepository
	wallets    repository.WalletRepository
	expenses   *service.ExpenseService
	subs       *service.SubscriptionService
	insights   *service.InsightService
	dispatcher push.Dispatcher
	loc        *time.Location
}

func NewJobs(users *repository.UserRepository, wallets repository.WalletRepository, expenses *service.ExpenseService, subs *service.SubscriptionService, insights *service.InsightService, dispatcher push.Dispatcher, loc *time.Location) *Jobs {
	if loc == nil {
		loc = time.Local
	}
	return &Jobs{
		users:      users,
		wallets:    wallets,
		expenses:   expenses,
		subs:       subs,
		insights:   insights,
		dispatcher: dispatcher,
		loc:        loc,
	}
}

// MidnightTick realizes due scheduled entries, then materializes due
// subscription cycles.
func (j *Jobs) MidnightTick() {
	ctx := context.Background()
	now := time.Now().In(j.loc)

	realized, err := j.expenses.RealizeDue(ctx, now)
	if err != nil {
		slog.Error("midnight tick: realizing scheduled entries failed", "error", err)
	}
	charged, err := j.subs.MaterializeDue(ctx, now)
	if err != nil {
		slog.Error("midnight tick: materializing subscriptions failed", "error", err)
	}
	slog.Info("midnight tick done", "realized", realized, "charged", charged)
}

// BudgetAlerts tells every reachable user what they can still spend
// today.
func (j *Jobs) BudgetAlerts() {
	j.notifyUsers("budget_alerts", func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error) {
		status, err := j.insights.BudgetStatus(ctx, wallet, time.Now().In(j.loc))
		if err != nil {
			return nil, err
		}
		if status.MonthlyBudget.IsZero() {
			return nil, nil
		}

		body := fmt.Sprintf("You can still spend %s today.", status.CanSpendToday.StringFixed(2))
		if status.CanSpendToday.IsNegative() {
			body = fmt.Sprintf("You are %s over today's budget.", status.CanSpendToday.Abs().StringFixed(2))
		}
		return &push.Message{
			To:    *user.NotificationToken,
			Title: "Budget check",
			Body:  body,
			Data:  map[string]string{"type": "budget_alert"},
		}, nil
	})
}

// SubscriptionReminders warns about charges due in the next three days.
func (j *Jobs) SubscriptionReminders() {
	j.notifyUsers("subscription_reminders", func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error) {
		due, err := j.subs.DueWithin(ctx, wallet.ID, time.Now().In(j.loc), 3)
		if err != nil {
			return nil, err
		}
		if len(due) == 0 {
			return nil, nil
		}

		body := fmt.Sprintf("%s (%s) is due on %s.",
			due[0].Description, due[0].Amount.StringFixed(2), due[0].NextBillingDate.Format("Jan 2"))
		if len(due) > 1 {
			body = fmt.Sprintf("%d subscriptions are due soon, starting with %s (%s) on %s.",
				len(due), due[0].Description, due[0].Amount.StringFixed(2), due[0].NextBillingDate.Format("Jan 2"))
		}
		return &push.Message{
			To:    *user.NotificationToken,
			Title: "Upcoming subscriptions",
			Body:  body,
			Data:  map[string]string{"type": "subscription_reminder"},
		}, nil
	})
}

func (j *Jobs) DailySummaries() {
	j.summaries("daily_summaries", "Today's spending", j.insights.DailySummary)
}

func (j *Jobs) WeeklySummaries() {
	j.summaries("weekly_summaries", "Last week's spending", j.insights.WeeklySummary)
}

func (j *Jobs) MonthlySummaries() {
	j.summaries("monthly_summaries", "Last month's spending", j.insights.MonthlySummary)
}

func (j *Jobs) summaries(job, title string, compute func(context.Context, *model.Wallet, time.Time) (*service.PeriodSummary, error)) {
	j.notifyUsers(job, func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error) {
		summary, err := compute(ctx, wallet, time.Now().In(j.loc))
		if err != nil {
			return nil, err
		}
		if summary.Total.IsZero() {
			return nil, nil
		}

		body := fmt.Sprintf("Total %s.", summary.Total.StringFixed(2))
		if len(summary.TopCategories) > 0 {
			top := summary.TopCategories[0]
			body = fmt.Sprintf("Total %s, most of it on %s (%s).",
				summary.Total.StringFixed(2), top.Category, top.Total.StringFixed(2))
		}
		return &push.Message{
			To:    *user.NotificationToken,
			Title: title,
			Body:  body,
			Data:  map[string]string{"type": job},
		}, nil
	})
}

// AnomalyChecks flags days spending far above the trailing average.
func (j *Jobs) AnomalyChecks() {
	j.notifyUsers("anomaly_checks", func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error) {
		report, err := j.insights.CheckAnomaly(ctx, wallet, time.Now().In(j.loc))
		if err != nil {
			return nil, err
		}
		if !report.Flagged {
			return nil, nil
		}
		return &push.Message{
			To:    *user.NotificationToken,
			Title: "Unusual spending",
			Body: fmt.Sprintf("You spent %s today, well above your %s daily average.",
				report.SpentToday.StringFixed(2), report.DailyAverage.StringFixed(2)),
			Data: map[string]string{"type": "anomaly"},
		}, nil
	})
}

// notifyUsers runs build for every user with a notification token and
// dispatches the collected messages in one batch. A panic or error in one
// user's unit never aborts the others.
func (j *Jobs) notifyUsers(job string, build func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error)) {
	ctx := context.Background()
	users, err := j.users.ListWithNotificationToken(ctx)
	if err != nil {
		slog.Error("listing notifiable users failed", "job", job, "error", err)
		return
	}

	var messages []push.Message
	for _, user := range users {
		if msg := j.buildForUser(ctx, job, user, build); msg != nil {
			messages = append(messages, *msg)
		}
	}
	if len(messages) == 0 {
		slog.Info("job produced no notifications", "job", job, "users", len(users))
		return
	}

	tickets, err := j.dispatcher.Send(ctx, messages)
	if err != nil {
		slog.Error("dispatching notifications failed", "job", job, "count", len(messages), "error", err)
		return
	}
	for _, t := range tickets {
		if t.Status != "ok" {
			slog.Warn("notification not accepted", "job", job, "ticket", t.ID, "status", t.Status, "detail", t.Message)
		}
	}
	slog.Info("job dispatched notifications", "job", job, "sent", len(messages), "users", len(users))
}

func (j *Jobs) buildForUser(ctx context.Context, job string, user model.User, build func(ctx context.Context, user model.User, wallet *model.Wallet) (*push.Message, error)) (msg *push.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job item panicked", "job", job, "user_id", user.ID, "panic", r)
			msg = nil
		}
	}()

	userCtx, cancel := context.WithTimeout(ctx, perUserTimeout)
	defer cancel()

	wallet, err := j.wallets.GetByUserID(userCtx, user.ID)
	if err != nil {
		slog.Error("job item: resolving wallet failed", "job", job, "user_id", user.ID, "error", err)
		return nil
	}

	msg, err = build(userCtx, user, wallet)
	if err != nil {
		slog.Error("job item failed", "job", job, "user_id", user.ID, "error", err)
		return nil
	}
	return msg
}
