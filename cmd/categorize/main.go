package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/averyk/lifeledger/internal/config"
	"github.com/averyk/lifeledger/internal/infrastructure/llm"
	"github.com/averyk/lifeledger/internal/model"
)

// Smoke test for the categorizer. Pass the description as arguments:
//
//	go run ./cmd/categorize coffee and a croissant 4.50
func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if conf.OpenAI.APIKey == "" {
		log.Fatal("set LIFELEDGER_OPENAI_API_KEY first")
	}

	description := strings.Join(os.Args[1:], " ")
	if description == "" {
		description = "weekly groceries at the supermarket 42.80"
	}

	client := llm.NewOpenAIClient(conf.OpenAI.APIKey, conf.OpenAI.BaseURL, conf.OpenAI.Model)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history := []string{
		"2026-08-28 [food:groceries] weekly groceries",
		"2026-08-29 [transport:public] monthly transit pass",
	}
	prediction, err := client.PredictExpense(ctx, description, model.PredefinedCategories, history)
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	fmt.Printf("description: %s\n", description)
	fmt.Printf("amount:      %.2f\n", prediction.Amount)
	fmt.Printf("category:    %s\n", prediction.Category)
	fmt.Printf("note:        %s\n", prediction.Note)
}
