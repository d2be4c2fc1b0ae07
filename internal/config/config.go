package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OpenAI    ModelConfig     `mapstructure:"openai"`
	Push      PushConfig      `mapstructure:"push"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type ModelConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type PushConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// SchedulerConfig holds the cron expressions for the background jobs.
// The expressions are configuration; the job semantics live in
// internal/scheduler.
type SchedulerConfig struct {
	Timezone              string `mapstructure:"timezone"`
	MidnightTick          string `mapstructure:"midnight_tick"`
	BudgetAlerts          string `mapstructure:"budget_alerts"`
	SubscriptionReminders string `mapstructure:"subscription_reminders"`
	DailySummaries        string `mapstructure:"daily_summaries"`
	WeeklySummaries       string `mapstructure:"weekly_summaries"`
	MonthlySummaries      string `mapstructure:"monthly_summaries"`
	AnomalyChecks         string `mapstructure:"anomaly_checks"`
}

// LoadConfig reads config.yaml from the working directory. Every value can
// be overridden through the environment, e.g. LIFELEDGER_JWT_SECRET.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("LIFELEDGER")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("jwt.expire_hours", 72)
	viper.SetDefault("push.base_url", "https://exp.host")
	viper.SetDefault("scheduler.timezone", "Europe/Berlin")
	viper.SetDefault("scheduler.midnight_tick", "0 0 * * *")
	viper.SetDefault("scheduler.budget_alerts", "0 8,13,19 * * *")
	viper.SetDefault("scheduler.subscription_reminders", "0 10 * * *")
	viper.SetDefault("scheduler.daily_summaries", "30 20 * * *")
	viper.SetDefault("scheduler.weekly_summaries", "0 9 * * 1")
	viper.SetDefault("scheduler.monthly_summaries", "0 9 1 * *")
	viper.SetDefault("scheduler.anomaly_checks", "0 21 * * *")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
