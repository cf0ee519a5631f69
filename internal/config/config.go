// Package config loads the environment configuration for the sync. A .env
// file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults matching the deployed setup.
const (
	defaultStartingDate     = "2024-03-01"
	defaultPayee            = "Fintual"
	defaultSnapshotLocation = "./tmp/fintual-data/balance.json"
	defaultCronSchedule     = "0 0 0 * * *"
	defaultTimeZone         = "America/Santiago"
)

// Config is the full configuration surface of the sync.
type Config struct {
	// Fintual portal credentials and goal.
	FintualEmail    string
	FintualPassword string
	FintualGoalID   string

	// Actual Budget sync server session and target account.
	ActualServerURL string
	ActualPassword  string
	ActualSyncID    string
	ActualBudgetID  string
	ActualAccountID string
	Payee           string

	// StartingDate is the cutover: real differences before it are replayed
	// as one aggregated base transaction, everything on or after it per day.
	StartingDate time.Time

	// SnapshotLocation is a local file path or a gs:// URI.
	SnapshotLocation string

	// Recurring trigger. Seconds-resolution cron expression plus IANA zone.
	CronSchedule string
	Location     *time.Location
}

// Load reads the configuration from the environment, applying defaults and
// rejecting missing required variables.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		FintualEmail:     os.Getenv("FINTUAL_USER_EMAIL"),
		FintualPassword:  os.Getenv("FINTUAL_USER_PASSWORD"),
		FintualGoalID:    os.Getenv("FINTUAL_GOAL_ID"),
		ActualServerURL:  os.Getenv("ACTUAL_SERVER_URL"),
		ActualPassword:   os.Getenv("ACTUAL_PASSWORD"),
		ActualSyncID:     os.Getenv("ACTUAL_SYNC_ID"),
		ActualBudgetID:   os.Getenv("ACTUAL_BUDGET_ID"),
		ActualAccountID:  os.Getenv("ACTUAL_FINTUAL_ACCOUNT"),
		Payee:            getenvDefault("ACTUAL_PAYEE", defaultPayee),
		SnapshotLocation: getenvDefault("SNAPSHOT_LOCATION", defaultSnapshotLocation),
		CronSchedule:     getenvDefault("CRON_SCHEDULE", defaultCronSchedule),
	}

	required := []struct {
		name  string
		value string
	}{
		{"FINTUAL_USER_EMAIL", cfg.FintualEmail},
		{"FINTUAL_USER_PASSWORD", cfg.FintualPassword},
		{"FINTUAL_GOAL_ID", cfg.FintualGoalID},
		{"ACTUAL_SERVER_URL", cfg.ActualServerURL},
		{"ACTUAL_PASSWORD", cfg.ActualPassword},
		{"ACTUAL_SYNC_ID", cfg.ActualSyncID},
		{"ACTUAL_BUDGET_ID", cfg.ActualBudgetID},
		{"ACTUAL_FINTUAL_ACCOUNT", cfg.ActualAccountID},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s is not set", r.name)
		}
	}

	startingDate := getenvDefault("STARTING_DATE", defaultStartingDate)
	parsed, err := time.ParseInLocation("2006-01-02", startingDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_DATE %q: %w", startingDate, err)
	}
	cfg.StartingDate = parsed

	tz := getenvDefault("CRON_TIMEZONE", defaultTimeZone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getenvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
