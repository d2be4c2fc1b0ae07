package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/averyk/lifeledger/internal/config"
	"github.com/averyk/lifeledger/internal/infrastructure/push"
)

// Sends a single test notification to an Expo push token:
//
//	go run ./cmd/pushtest ExponentPushToken[xxxxxxxx]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: pushtest <expo-push-token>")
	}
	token := os.Args[1]

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	client := push.NewExpoClient(conf.Push.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tickets, err := client.Send(ctx, []push.Message{{
		To:    token,
		Title: "Test notification",
		Body:  "If you can read this, push delivery works.",
	}})
	if err != nil {
		log.Fatalf("sending push: %v", err)
	}
	for _, t := range tickets {
		fmt.Printf("ticket: id=%s status=%s message=%s\n", t.ID, t.Status, t.Message)
	}
}
