package scenario

import (
	"context"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
)

// Driver sequences the steps of one scenario. Each step starts only after
// the previous one succeeded; the first failure ends the run after every
// spawned process has been killed.
type Driver struct {
	session *Session
	steps   []step
}

func NewDriver(s *Session) *Driver {
	return &Driver{session: s, steps: scenarioSteps(s)}
}

// Run executes the scenario once and always returns a result.
func (d *Driver) Run(ctx context.Context) *Result {
	s := d.session
	res := newResult(s.RunID)
	s.result = res

	if timeout := s.Config.ScenarioTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	util.Info("scenario %s starting (topic %q)", res.RunID, s.Config.Topic)
	d.transition(types.StateInit)

	for _, st := range d.steps {
		if st.label != "" {
			s.Reporter.Step(st.label)
		}

		start := time.Now()
		err := st.run(ctx, s)
		kind := ""
		if err != nil {
			kind = types.KindOf(err).String()
		}
		metrics.ObserveStep(st.name, time.Since(start).Seconds(), kind)

		if err != nil {
			if st.label != "" {
				s.Reporter.Failed()
			}
			d.fail(st, err)
			return d.finish()
		}
		if st.label != "" {
			s.Reporter.Ok()
		}
		d.transition(st.to)
	}
	return d.finish()
}

func (d *Driver) transition(to types.State) {
	res := d.session.result
	if to != res.State {
		util.Debug("scenario %s: %s -> %s", res.RunID, res.State, to)
	}
	res.State = to
	metrics.CurrentState.Set(float64(to))
}

func (d *Driver) fail(st step, err error) {
	s := d.session
	res := s.result

	util.Error("scenario %s: step %s failed in state %s: %v", res.RunID, st.name, res.State, err)
	res.FailedStep = st.name
	res.record(err)
	d.transition(types.StateFailed)

	s.Launcher.KillAll()
	s.Launcher.Reap(s.Config.ReapTimeout)

	for name, h := range s.handles() {
		if _, ok := res.Statuses[name]; ok || !h.Exited() {
			continue
		}
		status, _ := h.Wait(context.Background())
		res.Statuses[name] = status
	}
}

func (d *Driver) finish() *Result {
	res := d.session.result
	res.Finished = time.Now()

	outcome := "pass"
	if !res.Passed() {
		outcome = "fail"
	}
	metrics.ScenarioRuns.WithLabelValues(outcome).Inc()
	util.Info("scenario %s finished in %v: %s (state %s)", res.RunID, res.Duration().Round(time.Millisecond), outcome, res.State)
	return res
}
