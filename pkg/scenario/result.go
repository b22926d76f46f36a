package scenario

import (
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/hashicorp/go-multierror"
)

// Result aggregates the outcome of one run. The run passes only when every
// step succeeded and every component exited with status zero.
type Result struct {
	RunID      string
	State      types.State
	FailedStep string
	Statuses   map[string]int
	Err        error
	Started    time.Time
	Finished   time.Time
}

func newResult(runID string) *Result {
	return &Result{
		RunID:    runID,
		State:    types.StateInit,
		Statuses: map[string]int{},
		Started:  time.Now(),
	}
}

func (r *Result) record(err error) {
	if err != nil {
		r.Err = multierror.Append(r.Err, err)
	}
}

func (r *Result) Passed() bool {
	return r.State == types.StateDone && r.Err == nil
}

// ExitCode is 0 for a passing run and 1 otherwise.
func (r *Result) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
