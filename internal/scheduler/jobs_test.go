package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/averyk/lifeledger/internal/config"
	"github.com/averyk/lifeledger/internal/infrastructure/database"
	"github.com/averyk/lifeledger/internal/infrastructure/push"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
	"github.com/averyk/lifeledger/internal/service"
)

type fakeDispatcher struct {
	mu      sync.Mutex
	batches [][]push.Message
}

func (f *fakeDispatcher) Send(ctx context.Context, messages []push.Message) ([]push.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, messages)
	tickets := make([]push.Ticket, len(messages))
	for i := range messages {
		tickets[i] = push.Ticket{ID: "t", Status: "ok"}
	}
	return tickets, nil
}

func (f *fakeDispatcher) sent() []push.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []push.Message
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

type jobEnv struct {
	db         *gorm.DB
	users      *repository.UserRepository
	wallets    repository.WalletRepository
	expRepo    repository.ExpenseRepository
	expenses   *service.ExpenseService
	subs       *service.SubscriptionService
	insights   *service.InsightService
	dispatcher *fakeDispatcher
	jobs       *Jobs
}

func newJobEnv(t *testing.T) *jobEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	wallets := repository.NewWalletRepository(db)
	expRepo := repository.NewExpenseRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	limitRepo := repository.NewWalletLimitRepository(db)

	expenses := service.NewExpenseService(db, wallets, expRepo)
	subs := service.NewSubscriptionService(db, wallets, subRepo, expenses, expRepo)
	insights := service.NewInsightService(expRepo, limitRepo)
	dispatcher := &fakeDispatcher{}

	return &jobEnv{
		db:         db,
		users:      users,
		wallets:    wallets,
		expRepo:    expRepo,
		expenses:   expenses,
		subs:       subs,
		insights:   insights,
		dispatcher: dispatcher,
		jobs:       NewJobs(users, wallets, expenses, subs, insights, dispatcher, time.UTC),
	}
}

func (e *jobEnv) seedUser(t *testing.T, id, token string) {
	t.Helper()
	user := &model.User{ID: id, Username: id, Email: id + "@example.com"}
	if token != "" {
		user.NotificationToken = &token
	}
	require.NoError(t, e.users.Create(context.Background(), user))
}

func (e *jobEnv) seedWallet(t *testing.T, userID string, income string, target float64) *model.Wallet {
	t.Helper()
	wallet := &model.Wallet{
		UserID:                  userID,
		Income:                  decimal.RequireFromString(income),
		MonthlyPercentageTarget: target,
	}
	require.NoError(t, e.wallets.Create(context.Background(), wallet))
	return wallet
}

func TestBudgetAlertsSkipBrokenUsers(t *testing.T) {
	env := newJobEnv(t)

	env.seedUser(t, "u1", "tok-1")
	env.seedWallet(t, "u1", "3000", 0.5)
	// u2 has a token but no wallet; the failure must not abort the batch.
	env.seedUser(t, "u2", "tok-2")
	// u3 has no token and is never considered.
	env.seedUser(t, "u3", "")
	env.seedUser(t, "u4", "tok-4")
	env.seedWallet(t, "u4", "2000", 0.4)

	env.jobs.BudgetAlerts()

	sent := env.dispatcher.sent()
	require.Len(t, sent, 2)
	tos := []string{sent[0].To, sent[1].To}
	assert.ElementsMatch(t, []string{"tok-1", "tok-4"}, tos)
	assert.Equal(t, "Budget check", sent[0].Title)
}

func TestBudgetAlertsSilentWithoutBudget(t *testing.T) {
	env := newJobEnv(t)
	env.seedUser(t, "u1", "tok-1")
	// No income, no limits, no history, no balance: nothing to report.
	env.seedWallet(t, "u1", "0", 0)

	env.jobs.BudgetAlerts()
	assert.Empty(t, env.dispatcher.sent())
}

func TestMidnightTickRealizesAndMaterializes(t *testing.T) {
	env := newJobEnv(t)
	ctx := context.Background()
	env.seedUser(t, "u1", "")
	wallet := env.seedWallet(t, "u1", "0", 0)
	require.NoError(t, env.wallets.AddToBalance(ctx, wallet.ID, decimal.RequireFromString("100")))

	// A scheduled entry whose date has already arrived.
	due := &model.Expense{
		WalletID:    wallet.ID,
		Amount:      decimal.RequireFromString("10"),
		Type:        model.ExpenseTypeExpense,
		Description: "Phone bill",
		Category:    "housing:internet",
		Date:        time.Now().Add(-time.Hour),
		Schedule:    true,
	}
	require.NoError(t, env.expRepo.Create(ctx, due))

	// A subscription cycle due today, with its template entry.
	today := service.Midnight(time.Now())
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          decimal.RequireFromString("15"),
		Description:     "Music streaming",
		BillingCycle:    model.BillingCycleMonthly,
		DateStart:       today.AddDate(0, -1, 0),
		IsActive:        true,
		NextBillingDate: today,
	}
	require.NoError(t, env.db.Create(sub).Error)
	template := &model.Expense{
		WalletID:       wallet.ID,
		Amount:         sub.Amount,
		Type:           model.ExpenseTypeExpense,
		Description:    sub.Description,
		Category:       "entertainment:streaming",
		Date:           sub.DateStart,
		SubscriptionID: &sub.ID,
	}
	require.NoError(t, env.expRepo.Create(ctx, template))

	env.jobs.MidnightTick()

	reloaded, err := env.wallets.GetByID(ctx, wallet.ID)
	require.NoError(t, err)
	want := decimal.RequireFromString("75")
	assert.True(t, reloaded.Balance.Equal(want), "want %s, got %s", want, reloaded.Balance)
}

func TestSubscriptionReminders(t *testing.T) {
	env := newJobEnv(t)
	ctx := context.Background()
	env.seedUser(t, "u1", "tok-1")
	wallet := env.seedWallet(t, "u1", "0", 0)

	today := service.Midnight(time.Now())
	sub := &model.Subscription{
		WalletID:        wallet.ID,
		Amount:          decimal.RequireFromString("12"),
		Description:     "Cloud storage",
		BillingCycle:    model.BillingCycleMonthly,
		DateStart:       today.AddDate(0, -1, 0),
		IsActive:        true,
		NextBillingDate: today.AddDate(0, 0, 2),
	}
	require.NoError(t, env.db.WithContext(ctx).Create(sub).Error)

	env.jobs.SubscriptionReminders()

	sent := env.dispatcher.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Upcoming subscriptions", sent[0].Title)
	assert.Contains(t, sent[0].Body, "Cloud storage")
}

func TestSchedulerRegistration(t *testing.T) {
	env := newJobEnv(t)

	cfg := config.SchedulerConfig{
		Timezone:     "UTC",
		MidnightTick: "0 0 * * *",
	}
	sched, err := New(cfg, env.jobs)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, sched.Location())

	cfg.MidnightTick = "not a cron spec"
	_, err = New(cfg, env.jobs)
	require.Error(t, err)
}
