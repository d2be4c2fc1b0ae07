package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/infrastructure/llm"
	"github.com/averyk/lifeledger/internal/model"
)

// fallbackSimilarity is the minimum ratio for the heuristic predictor to
// trust a past entry's category.
const fallbackSimilarity = 0.5

// PredictService turns free-text descriptions into ledger entries. The
// model call can fail at any time; the fallback predicts from similar
// past descriptions and the worst case is an uncategorized entry, never a
// failed request.
type PredictService struct {
	provider llm.Provider
	wallets  walletResolver
	expenses *ExpenseService
}

type walletResolver interface {
	GetByUserID(ctx context.Context, userID string) (*model.Wallet, error)
}

func NewPredictService(provider llm.Provider, wallets walletResolver, expenses *ExpenseService) *PredictService {
	return &PredictService{provider: provider, wallets: wallets, expenses: expenses}
}

// QuickAdd predicts amount and category for the description and records
// the resulting realized expense.
func (s *PredictService) QuickAdd(ctx context.Context, userID, description string) (*model.Expense, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}

	recent, err := s.expenses.expenses.ListRecent(ctx, wallet.ID, 10)
	if err != nil {
		return nil, err
	}

	prediction := s.predict(ctx, description, recent)

	in := CreateExpenseInput{
		Amount:      decimal.NewFromFloat(prediction.Amount),
		Type:        model.ExpenseTypeExpense,
		Description: description,
		Category:    prediction.Category,
		Date:        time.Now(),
		Note:        prediction.Note,
	}
	if in.Amount.IsNegative() {
		in.Amount = in.Amount.Abs()
	}
	return s.expenses.create(ctx, wallet, in)
}

// Predict exposes the prediction alone, for clients that want to confirm
// before saving.
func (s *PredictService) Predict(ctx context.Context, userID, description string) (*llm.Prediction, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	recent, err := s.expenses.expenses.ListRecent(ctx, wallet.ID, 10)
	if err != nil {
		return nil, err
	}
	return s.predict(ctx, description, recent), nil
}

func (s *PredictService) predict(ctx context.Context, description string, recent []model.Expense) *llm.Prediction {
	if s.provider != nil {
		history := make([]string, 0, len(recent))
		for _, e := range recent {
			history = append(history, fmt.Sprintf("%s [%s] %s",
				e.Date.Format("2006-01-02"), e.Category, e.Description))
		}
		prediction, err := s.provider.PredictExpense(ctx, description, model.PredefinedCategories, history)
		if err == nil {
			return prediction
		}
		slog.Warn("prediction provider failed, falling back to similarity", "error", err)
	}
	return similarityPredict(description, recent)
}

// similarityPredict reuses the category of the most similar past
// description. With nothing similar enough it returns an uncategorized
// prediction rather than an error.
func similarityPredict(description string, recent []model.Expense) *llm.Prediction {
	norm := normalizeDescription(description)
	best := -1.0
	prediction := &llm.Prediction{Category: "other:misc"}

	for _, e := range recent {
		ratio := similarityRatio(norm, normalizeDescription(e.Description))
		if ratio >= fallbackSimilarity && ratio > best {
			best = ratio
			prediction.Category = e.Category
			amount, _ := e.Amount.Float64()
			prediction.Amount = amount
		}
	}
	return prediction
}
