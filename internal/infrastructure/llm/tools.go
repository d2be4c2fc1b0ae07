package llm

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// GenerateCategorizeTool builds the tool definition with the category set
// injected as an enum, so the model cannot invent categories.
func GenerateCategorizeTool(categories []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "categorize_expense",
			Description: "Record one expense: extract the amount and pick the category.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"amount": {
						Type:        jsonschema.Number,
						Description: "Total amount spent; sum up multiple positions.",
					},
					"category": {
						Type:        jsonschema.String,
						Enum:        categories,
						Description: "Category, strictly one of the listed values.",
					},
					"note": {
						Type:        jsonschema.String,
						Description: "Short plain description without amount or time words.",
					},
				},
				Required: []string{"amount", "category", "note"},
			},
		},
	}
}
