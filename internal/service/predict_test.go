package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averyk/lifeledger/internal/infrastructure/llm"
	"github.com/averyk/lifeledger/internal/model"
)

type stubProvider struct {
	prediction *llm.Prediction
	err        error
}

func (p *stubProvider) PredictExpense(ctx context.Context, description string, categories, history []string) (*llm.Prediction, error) {
	return p.prediction, p.err
}

func TestQuickAddUsesProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := env.seedWallet(t, "u1", "100")

	provider := &stubProvider{prediction: &llm.Prediction{
		Amount:   4.5,
		Category: "food:restaurants",
		Note:     "coffee",
	}}
	predict := NewPredictService(provider, env.wallets, env.expenses)

	expense, err := predict.QuickAdd(ctx, "u1", "coffee at the corner place")
	require.NoError(t, err)
	assert.Equal(t, "food:restaurants", expense.Category)
	requireAmount(t, "4.5", expense.Amount)
	assert.False(t, expense.Schedule)
	requireAmount(t, "95.5", env.balance(t, wallet.ID))
}

func TestPredictFallsBackToSimilarity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedWallet(t, "u1", "100")

	_, err := env.expenses.Create(ctx, "u1", CreateExpenseInput{
		Amount:      dec("4.50"),
		Type:        model.ExpenseTypeExpense,
		Description: "starbucks coffee",
		Category:    "food:restaurants",
		Date:        time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	// A failing provider must degrade to the heuristic, never error out.
	predict := NewPredictService(&stubProvider{err: errors.New("rate limited")}, env.wallets, env.expenses)
	prediction, err := predict.Predict(ctx, "u1", "Starbucks Coffee #12")
	require.NoError(t, err)
	assert.Equal(t, "food:restaurants", prediction.Category)
}

func TestPredictWithoutProviderOrHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedWallet(t, "u1", "100")

	predict := NewPredictService(nil, env.wallets, env.expenses)
	prediction, err := predict.Predict(ctx, "u1", "something entirely new")
	require.NoError(t, err)
	assert.Equal(t, "other:misc", prediction.Category)
	assert.Zero(t, prediction.Amount)
}
