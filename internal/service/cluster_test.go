package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averyk/lifeledger/internal/model"
)

func TestClusterExpenses(t *testing.T) {
	expenses := []model.Expense{
		{Type: model.ExpenseTypeExpense, Description: "Starbucks #1042", Category: "food:restaurants", Amount: dec("5.40")},
		{Type: model.ExpenseTypeExpense, Description: "starbucks", Category: "food:restaurants", Amount: dec("4.60")},
		{Type: model.ExpenseTypeExpense, Description: "Weekly groceries at Rewe", Category: "food:groceries", Amount: dec("52.10")},
		{Type: model.ExpenseTypeExpense, Description: "Rewe groceries run", Category: "food:groceries", Amount: dec("47.90")},
		{Type: model.ExpenseTypeIncome, Description: "Salary", Category: "finance:fees", Amount: dec("3000")},
	}

	groups := ClusterExpenses(expenses)
	require.Len(t, groups, 2)

	// Heaviest group first.
	assert.Equal(t, "Weekly groceries at Rewe", groups[0].Label)
	requireAmount(t, "100", groups[0].Total)
	assert.Equal(t, 2, groups[0].Count)

	requireAmount(t, "10", groups[1].Total)
	assert.Equal(t, 2, groups[1].Count)
}

func TestClusterExpensesKeepsDistinctSubjects(t *testing.T) {
	expenses := []model.Expense{
		{Type: model.ExpenseTypeExpense, Description: "Dentist appointment", Category: "health:medical", Amount: dec("120")},
		{Type: model.ExpenseTypeExpense, Description: "Train to Hamburg", Category: "transport:public", Amount: dec("49")},
	}
	groups := ClusterExpenses(expenses)
	assert.Len(t, groups, 2)
}

func TestNormalizeDescription(t *testing.T) {
	cases := map[string]string{
		"Starbucks #1042":    "starbucks",
		"REWE   Markt 24/7!": "rewe markt",
		"café":               "café",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDescription(in), "input %q", in)
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("starbucks", "starbucks"))
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 0.0, similarityRatio("abcd", ""))
	assert.InDelta(t, 0.833, similarityRatio("kitten", "sitten"), 0.001)
}
