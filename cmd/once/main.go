package main

import (
	"context"
	"flag"
	"time"

	"github.com/SebastianMaluk/fintual-sync/internal/actual"
	"github.com/SebastianMaluk/fintual-sync/internal/config"
	"github.com/SebastianMaluk/fintual-sync/internal/fintual"
	"github.com/SebastianMaluk/fintual-sync/internal/job"
	"github.com/SebastianMaluk/fintual-sync/internal/logger"
	"github.com/SebastianMaluk/fintual-sync/internal/snapshot"
)

func main() {
	log := logger.New()

	phase := flag.String("phase", "all", "which phase to run: all, scrape or replay")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	runner, err := newRunner(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build job runner")
	}

	// The browser-facing portal can stall; bound the whole run.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("phase", *phase).Msg("Running task once")

	switch *phase {
	case "all":
		_, err = runner.Trigger(ctx)
	case "scrape":
		err = runner.Scrape(ctx)
	case "replay":
		err = runner.Replay(ctx)
	default:
		log.Fatal().Str("phase", *phase).Msg("Unknown phase")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Error running task")
	}

	log.Info().Msg("Task completed")
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
