package llm

import "context"

// Prediction is the structured categorization result for a free-text
// expense description. The caller validates shape, not content.
type Prediction struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

// Provider is the categorization capability behind the quick-add flow.
type Provider interface {
	// PredictExpense extracts amount and category from the description.
	// history carries recent formatted entries of the same wallet so the
	// model keeps categorization consistent with past habits.
	PredictExpense(ctx context.Context, description string, categories []string, history []string) (*Prediction, error)
}
