package job

import "sync/atomic"

// State is the runner's execution state.
type State string

const (
	// StateIdle means no run is executing and a trigger will start one.
	StateIdle State = "idle"
	// StateRunning means a run is executing and triggers are skipped.
	StateRunning State = "running"
)

// guard is the two-state machine keeping runs from overlapping. Acquisition
// is atomic; release happens via defer on every exit path, so a failed run
// can never wedge the guard. The guard lives only in process memory: a
// crashed process resets it on restart.
type guard struct {
	running atomic.Bool
}

// TryAcquire moves Idle to Running. It reports false when already Running.
func (g *guard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release moves back to Idle.
func (g *guard) Release() {
	g.running.Store(false)
}

// State reports the current state.
func (g *guard) State() State {
	if g.running.Load() {
		return StateRunning
	}
	return StateIdle
}
