package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/model"
)

// similarityThreshold is the minimum edit-distance ratio for two
// descriptions to land in the same spending group.
const similarityThreshold = 0.7

// SpendingGroup is a cluster of expenses with near-identical descriptions
// or an obviously shared subject.
type SpendingGroup struct {
	Label    string          `json:"label"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type cluster struct {
	SpendingGroup
	normalized string
	keywords   map[string]struct{}
}

// ClusterExpenses groups expense-type entries by normalized description
// using edit-distance ratio, shared category and keyword overlap. The
// grouping is heuristic, not exact equality; the result is sorted by
// total, heaviest first.
func ClusterExpenses(expenses []model.Expense) []SpendingGroup {
	var clusters []*cluster

	for i := range expenses {
		e := &expenses[i]
		if e.Type != model.ExpenseTypeExpense {
			continue
		}
		norm := normalizeDescription(e.Description)
		words := keywords(norm)

		var home *cluster
		for _, c := range clusters {
			if similarityRatio(norm, c.normalized) >= similarityThreshold {
				home = c
				break
			}
			if e.Category != "" && e.Category == c.Category && sharesKeyword(words, c.keywords) {
				home = c
				break
			}
		}

		if home == nil {
			home = &cluster{
				SpendingGroup: SpendingGroup{
					Label:    e.Description,
					Category: e.Category,
					Total:    decimal.Zero,
				},
				normalized: norm,
				keywords:   words,
			}
			clusters = append(clusters, home)
		}
		home.Total = home.Total.Add(e.Amount)
		home.Count++
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Total.GreaterThan(clusters[j].Total)
	})

	groups := make([]SpendingGroup, 0, len(clusters))
	for _, c := range clusters {
		groups = append(groups, c.SpendingGroup)
	}
	return groups
}

// normalizeDescription lowercases and strips digits and punctuation so
// "Starbucks #1042" and "starbucks" compare as the same subject.
func normalizeDescription(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || r == ' ':
			b.WriteRune(r)
		case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// similarityRatio maps edit distance onto [0,1], 1 meaning identical.
func similarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func keywords(normalized string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharesKeyword(a, b map[string]struct{}) bool {
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}
