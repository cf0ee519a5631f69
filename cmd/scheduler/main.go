package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SebastianMaluk/fintual-sync/internal/actual"
	"github.com/SebastianMaluk/fintual-sync/internal/config"
	"github.com/SebastianMaluk/fintual-sync/internal/fintual"
	"github.com/SebastianMaluk/fintual-sync/internal/job"
	"github.com/SebastianMaluk/fintual-sync/internal/logger"
	"github.com/SebastianMaluk/fintual-sync/internal/snapshot"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	runner, err := newRunner(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build job runner")
	}

	scheduler := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Location))
	_, err = scheduler.AddFunc(cfg.CronSchedule, func() {
		ctx := logger.WithContext(context.Background(), log)
		// The runner skips overlapping triggers and logs every failure;
		// a failed run must never take the scheduler down.
		_, _ = runner.Trigger(ctx)
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CronSchedule).Msg("Invalid cron schedule")
	}

	log.Info().
		Str("schedule", cfg.CronSchedule).
		Str("timezone", cfg.Location.String()).
		Msg("Waiting for job to start")
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler")
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(2 * time.Minute):
		log.Warn().Msg("Timed out waiting for in-flight run")
	}
	log.Info().Msg("Scheduler exited")
}

func newRunner(cfg *config.Config) (*job.Runner, error) {
	store, err := snapshot.NewStore(cfg.SnapshotLocation)
	if err != nil {
		return nil, err
	}
	source := fintual.NewClient(fintual.ClientOptions{
		Email:    cfg.FintualEmail,
		Password: cfg.FintualPassword,
	})
	ledger := actual.NewClient(actual.ClientOptions{
		ServerURL: cfg.ActualServerURL,
		Password:  cfg.ActualPassword,
		SyncID:    cfg.ActualSyncID,
		BudgetID:  cfg.ActualBudgetID,
	})
	return job.NewRunner(job.Options{
		Source:    source,
		Store:     store,
		Ledger:    ledger,
		GoalID:    cfg.FintualGoalID,
		AccountID: cfg.ActualAccountID,
		Payee:     cfg.Payee,
		Cutover:   cfg.StartingDate,
	}), nil
}
