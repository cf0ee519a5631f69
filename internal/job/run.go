package job

import "time"

// RunStatus is the current status of one job run.
type RunStatus string

const (
	// RunStatusRunning indicates the run is in progress.
	RunStatusRunning RunStatus = "running"
	// RunStatusSucceeded indicates both phases completed.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusFailed indicates a phase aborted the run.
	RunStatusFailed RunStatus = "failed"
)

// Run records one execution of the job, for diagnostics.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Err        string
}
