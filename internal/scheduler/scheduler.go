package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/averyk/lifeledger/internal/config"
)

// Scheduler wires the batch jobs onto cron triggers. Jobs on the same
// entry run sequentially; the cron expressions themselves are
// configuration.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
}

func New(cfg config.SchedulerConfig, jobs *Jobs) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading scheduler timezone: %w", err)
	}

	c := cron.New(cron.WithLocation(loc))

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{"midnight_tick", cfg.MidnightTick, jobs.MidnightTick},
		{"budget_alerts", cfg.BudgetAlerts, jobs.BudgetAlerts},
		{"subscription_reminders", cfg.SubscriptionReminders, jobs.SubscriptionReminders},
		{"daily_summaries", cfg.DailySummaries, jobs.DailySummaries},
		{"weekly_summaries", cfg.WeeklySummaries, jobs.WeeklySummaries},
		{"monthly_summaries", cfg.MonthlySummaries, jobs.MonthlySummaries},
		{"anomaly_checks", cfg.AnomalyChecks, jobs.AnomalyChecks},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := c.AddFunc(e.spec, e.run); err != nil {
			return nil, fmt.Errorf("registering job %s (%q): %w", e.name, e.spec, err)
		}
		slog.Info("registered scheduled job", "job", e.name, "spec", e.spec)
	}

	return &Scheduler{cron: c, loc: loc}, nil
}

func (s *Scheduler) Location() *time.Location {
	return s.loc
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts triggering and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
