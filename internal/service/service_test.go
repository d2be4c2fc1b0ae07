package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/averyk/lifeledger/internal/infrastructure/database"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
)

// testEnv wires the service layer onto an in-memory database. A single
// connection serializes concurrent transactions the way the production
// setup relies on row-level locking.
type testEnv struct {
	db        *gorm.DB
	wallets   repository.WalletRepository
	expRepo   repository.ExpenseRepository
	subRepo   repository.SubscriptionRepository
	limitRepo repository.WalletLimitRepository

	expenses  *ExpenseService
	subs      *SubscriptionService
	walletSvc *WalletService
	limitSvc  *LimitService
	insights  *InsightService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:        db,
		wallets:   repository.NewWalletRepository(db),
		expRepo:   repository.NewExpenseRepository(db),
		subRepo:   repository.NewSubscriptionRepository(db),
		limitRepo: repository.NewWalletLimitRepository(db),
	}
	env.expenses = NewExpenseService(db, env.wallets, env.expRepo)
	env.subs = NewSubscriptionService(db, env.wallets, env.subRepo, env.expenses, env.expRepo)
	env.walletSvc = NewWalletService(env.wallets, env.expenses)
	env.limitSvc = NewLimitService(env.wallets, env.limitRepo)
	env.insights = NewInsightService(env.expRepo, env.limitRepo)
	return env
}

func (e *testEnv) seedWallet(t *testing.T, userID, balance string) *model.Wallet {
	t.Helper()
	wallet := &model.Wallet{
		UserID:  userID,
		Balance: dec(balance),
	}
	require.NoError(t, e.wallets.Create(context.Background(), wallet))
	return wallet
}

func (e *testEnv) balance(t *testing.T, walletID uint) decimal.Decimal {
	t.Helper()
	wallet, err := e.wallets.GetByID(context.Background(), walletID)
	require.NoError(t, err)
	return wallet.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}
