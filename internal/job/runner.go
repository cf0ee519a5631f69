// Package job composes the scrape phase (fetch, derive, snapshot write)
// and the replay phase (snapshot read, ledger import) into one logical job
// and guarantees at most one job instance runs at a time under a recurring
// trigger.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianMaluk/fintual-sync/internal/actual"
	"github.com/SebastianMaluk/fintual-sync/internal/fintual"
	"github.com/SebastianMaluk/fintual-sync/internal/logger"
	"github.com/SebastianMaluk/fintual-sync/internal/snapshot"
)

// Source supplies the goal performance document.
type Source interface {
	FetchGoalPerformance(ctx context.Context, goalID string) (*fintual.GoalPerformance, error)
}

// Ledger is the budgeting backend the snapshot is replayed into. Init must
// establish the session and budget context before ImportTransactions.
type Ledger interface {
	Init(ctx context.Context) error
	ImportTransactions(ctx context.Context, accountID string, txs []actual.Transaction) (*actual.ImportResult, error)
}

// Options wires a Runner.
type Options struct {
	Source    Source
	Store     snapshot.Store
	Ledger    Ledger
	GoalID    string
	AccountID string
	Payee     string
	Cutover   time.Time
}

// Runner executes the job and enforces single-flight triggering.
type Runner struct {
	opts  Options
	guard guard

	mu      sync.Mutex
	lastRun *Run
}

// NewRunner creates a runner from its collaborators.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts}
}

// State reports whether a run is currently executing.
func (r *Runner) State() State {
	return r.guard.State()
}

// LastRun returns a copy of the most recent run record, or nil before the
// first trigger.
func (r *Runner) LastRun() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRun == nil {
		return nil
	}
	run := *r.lastRun
	return &run
}

// Trigger starts one run unless a run is already executing, in which case
// it is a logged no-op. It reports whether a run was executed and the run's
// error, if any. The guard is released on every exit path.
func (r *Runner) Trigger(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx)

	if !r.guard.TryAcquire() {
		log.Warn().Msg("Job is already running, skipping this trigger")
		return false, nil
	}
	defer r.guard.Release()

	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Status:    RunStatusRunning,
	}
	r.setLastRun(run)

	log = log.With().Str("run_id", run.ID).Logger()
	ctx = logger.WithContext(ctx, log)
	log.Info().Msg("Running job")

	err := r.runOnce(ctx)

	finished := *run
	finished.FinishedAt = time.Now()
	if err != nil {
		finished.Status = RunStatusFailed
		finished.Err = err.Error()
		log.Error().Err(err).Msg("Job failed")
	} else {
		finished.Status = RunStatusSucceeded
		log.Info().Msg("Job finished")
	}
	r.setLastRun(&finished)

	return true, err
}

func (r *Runner) setLastRun(run *Run) {
	r.mu.Lock()
	r.lastRun = run
	r.mu.Unlock()
}

// runOnce executes the scrape phase then the replay phase. The replay
// phase only proceeds when the scrape phase succeeded.
func (r *Runner) runOnce(ctx context.Context) error {
	if err := r.Scrape(ctx); err != nil {
		return err
	}
	return r.Replay(ctx)
}

// Scrape fetches the goal performance, derives the reconciled series and
// persists the snapshot. Nothing is written when any step fails.
func (r *Runner) Scrape(ctx context.Context) error {
	steps := pipeline{
		&fetchPerformanceStep{source: r.opts.Source, goalID: r.opts.GoalID},
		&deriveSeriesStep{},
		&writeSnapshotStep{store: r.opts.Store},
	}
	return steps.execute(ctx, &RunState{})
}

// Replay loads the persisted snapshot and replays it into the ledger. It
// can run on its own against an existing snapshot, without re-scraping.
func (r *Runner) Replay(ctx context.Context) error {
	steps := pipeline{
		&readSnapshotStep{store: r.opts.Store},
		&replayStep{
			ledger:    r.opts.Ledger,
			cutover:   r.opts.Cutover,
			accountID: r.opts.AccountID,
			payee:     r.opts.Payee,
		},
	}
	return steps.execute(ctx, &RunState{})
}
