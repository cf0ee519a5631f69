package job

import (
	"context"
	"fmt"
	"time"

	"github.com/SebastianMaluk/fintual-sync/internal/fintual"
	"github.com/SebastianMaluk/fintual-sync/internal/logger"
	"github.com/SebastianMaluk/fintual-sync/internal/replay"
	"github.com/SebastianMaluk/fintual-sync/internal/series"
	"github.com/SebastianMaluk/fintual-sync/internal/snapshot"
)

// Step is a single step of the job pipeline.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *RunState) error
}

// RunState is the shared state threaded through the steps of one run.
type RunState struct {
	Performance *fintual.GoalPerformance
	Snapshot    *snapshot.Snapshot
	Report      *replay.Report
}

type pipeline []Step

func (p pipeline) execute(ctx context.Context, state *RunState) error {
	for _, step := range p {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// fetchPerformanceStep pulls the goal performance document from the portal.
type fetchPerformanceStep struct {
	source Source
	goalID string
}

func (s *fetchPerformanceStep) Name() string { return "fetch performance" }

func (s *fetchPerformanceStep) Execute(ctx context.Context, state *RunState) error {
	perf, err := s.source.FetchGoalPerformance(ctx, s.goalID)
	if err != nil {
		return err
	}
	state.Performance = perf
	return nil
}

// deriveSeriesStep turns the raw balance and deposit series into the
// reconciled snapshot. A missing named series aborts the run here, before
// anything is persisted.
type deriveSeriesStep struct{}

func (s *deriveSeriesStep) Name() string { return "derive series" }

func (s *deriveSeriesStep) Execute(ctx context.Context, state *RunState) error {
	log := logger.FromContext(ctx)

	balance, err := state.Performance.Series(fintual.SeriesBalance)
	if err != nil {
		return err
	}
	deposits, err := state.Performance.Series(fintual.SeriesDeposits)
	if err != nil {
		return err
	}

	balanceDeltas := series.Diff(balance.Data)
	depositDeltas := series.Diff(deposits.Data)
	reconciled, total := series.Reconcile(balanceDeltas, depositDeltas)

	log.Info().
		Int("balance_samples", len(reconciled)).
		Int("deposit_samples", len(depositDeltas)).
		Float64("real_difference_total", total).
		Msg("Derived real variation series")

	state.Snapshot = &snapshot.Snapshot{
		Balance:  reconciled,
		Deposits: depositDeltas,
	}
	return nil
}

// writeSnapshotStep persists the reconciled snapshot.
type writeSnapshotStep struct {
	store snapshot.Store
}

func (s *writeSnapshotStep) Name() string { return "write snapshot" }

func (s *writeSnapshotStep) Execute(ctx context.Context, state *RunState) error {
	return s.store.Write(ctx, state.Snapshot)
}

// readSnapshotStep loads and validates the persisted snapshot. Validation
// failure stops the replay phase before any ledger call.
type readSnapshotStep struct {
	store snapshot.Store
}

func (s *readSnapshotStep) Name() string { return "read snapshot" }

func (s *readSnapshotStep) Execute(ctx context.Context, state *RunState) error {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return err
	}
	state.Snapshot = snap
	return nil
}

// replayStep establishes the ledger session and replays the snapshot.
type replayStep struct {
	ledger    Ledger
	cutover   time.Time
	accountID string
	payee     string
}

func (s *replayStep) Name() string { return "replay ledger" }

func (s *replayStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.ledger.Init(ctx); err != nil {
		return err
	}
	report, err := replay.New(s.ledger).Replay(ctx, state.Snapshot, s.cutover, s.accountID, s.payee)
	if err != nil {
		return err
	}
	state.Report = report
	return nil
}
