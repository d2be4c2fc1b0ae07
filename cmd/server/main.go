package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyk/lifeledger/internal/api"
	"github.com/averyk/lifeledger/internal/api/controller"
	"github.com/averyk/lifeledger/internal/config"
	"github.com/averyk/lifeledger/internal/infrastructure/database"
	"github.com/averyk/lifeledger/internal/infrastructure/llm"
	"github.com/averyk/lifeledger/internal/infrastructure/push"
	"github.com/averyk/lifeledger/internal/repository"
	"github.com/averyk/lifeledger/internal/scheduler"
	"github.com/averyk/lifeledger/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := database.NewMySQLConnection(conf.Database.DSN)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}

	loc, err := time.LoadLocation(conf.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("loading timezone %q: %v", conf.Scheduler.Timezone, err)
	}

	var provider llm.Provider
	if conf.OpenAI.APIKey != "" {
		provider = llm.NewOpenAIClient(conf.OpenAI.APIKey, conf.OpenAI.BaseURL, conf.OpenAI.Model)
	} else {
		slog.Warn("no OpenAI key configured, falling back to similarity predictions")
	}
	dispatcher := push.NewExpoClient(conf.Push.BaseURL)

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	limitRepo := repository.NewWalletLimitRepository(db)

	expenseSvc := service.NewExpenseService(db, walletRepo, expenseRepo)
	walletSvc := service.NewWalletService(walletRepo, expenseSvc)
	subSvc := service.NewSubscriptionService(db, walletRepo, subRepo, expenseSvc, expenseRepo)
	limitSvc := service.NewLimitService(walletRepo, limitRepo)
	insightSvc := service.NewInsightService(expenseRepo, limitRepo)
	predictSvc := service.NewPredictService(provider, walletRepo, expenseSvc)
	authSvc := service.NewAuthService(userRepo)

	jobs := scheduler.NewJobs(userRepo, walletRepo, expenseSvc, subSvc, insightSvc, dispatcher, loc)
	sched, err := scheduler.New(conf.Scheduler, jobs)
	if err != nil {
		log.Fatalf("starting scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if conf.Server.Port != ":8080" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r,
		controller.NewAuthController(authSvc),
		controller.NewWalletController(walletSvc),
		controller.NewExpenseController(expenseSvc, predictSvc),
		controller.NewSubscriptionController(subSvc),
		controller.NewLimitController(limitSvc),
		controller.NewInsightController(walletSvc, insightSvc),
	)

	slog.Info("server starting", "port", conf.Server.Port)
	if err := r.Run(conf.Server.Port); err != nil {
		slog.Error("server exited", "error", err)
	}
}
