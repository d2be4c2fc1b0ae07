package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat endpoint and forces
// the prediction through a tool call so the output is machine-parseable.
type OpenAIClient struct {
	modelName string
	client    *openai.Client
}

func NewOpenAIClient(apiKey, baseURL, modelName string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAIClient{
		modelName: modelName,
		client:    openai.NewClientWithConfig(config),
	}
}

func (c *OpenAIClient) PredictExpense(ctx context.Context, description string, categories []string, history []string) (*Prediction, error) {
	sysPrompt := fmt.Sprintf(
		"You are a bookkeeping assistant. Current system time: %s. "+
			"Extract the total amount and the best-matching category from the user's expense description.",
		time.Now().Format("2006-01-02 15:04:05"))

	if len(history) > 0 {
		sysPrompt += "\n\nRecent entries of this user, for category consistency:\n"
		for _, line := range history {
			sysPrompt += "- " + line + "\n"
		}
		sysPrompt += "If the current expense resembles one of them, prefer the same category."
	}

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sysPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		Tools: []openai.Tool{
			GenerateCategorizeTool(categories),
		},
		ToolChoice: openai.ToolChoice{
			Type: openai.ToolTypeFunction,
			Function: openai.ToolFunction{
				Name: "categorize_expense",
			},
		},
		// Low temperature keeps the JSON stable.
		Temperature: 0.1,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("model returned no tool call")
	}

	var prediction Prediction
	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), &prediction); err != nil {
		return nil, fmt.Errorf("parsing prediction: %w", err)
	}
	return &prediction, nil
}
