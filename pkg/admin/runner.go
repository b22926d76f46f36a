package admin

import (
	"context"
	"errors"

	"github.com/downfa11-org/pubsub-harness/pkg/config"
	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/process"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
)

// Runner executes short-lived administrative commands synchronously.
// Commands go through the scenario's launcher so a hung command is still
// reached by cleanup.
type Runner struct {
	launcher *process.Launcher
	cfg      *config.Config
}

func NewRunner(l *process.Launcher, cfg *config.Config) *Runner {
	return &Runner{launcher: l, cfg: cfg}
}

// Run blocks until commandLine exits and returns its status verbatim.
// Anything but zero is an AdminCommandFailed error naming op.
func (r *Runner) Run(ctx context.Context, op, commandLine string) (int, error) {
	name := "admin " + op
	h, err := r.launcher.Launch(name, commandLine)
	if err != nil {
		metrics.AdminCommands.WithLabelValues(op, "failed").Inc()
		return -1, &types.Error{Kind: types.AdminCommandFailed, Op: op, Name: commandLine, Status: -1, Err: err}
	}

	h.Drain(util.DebugWriter(op))
	status, err := h.Wait(ctx)
	if ctx.Err() != nil && !h.Exited() {
		h.Kill()
	}
	if err != nil || status != 0 {
		metrics.AdminCommands.WithLabelValues(op, "failed").Inc()
		if status == 0 {
			status = -1
		}
		return status, &types.Error{Kind: types.AdminCommandFailed, Op: op, Name: commandLine, Status: status, Err: unwrapExit(err)}
	}

	metrics.AdminCommands.WithLabelValues(op, "ok").Inc()
	return 0, nil
}

// exit errors are already summarized by the status
func unwrapExit(err error) error {
	var he *types.Error
	if errors.As(err, &he) && he.Kind == types.ProcessExitNonZero {
		return nil
	}
	return err
}

func (r *Runner) CreateTopic(ctx context.Context) error {
	_, err := r.Run(ctx, config.OpCreate, r.cfg.TopicAdminCommand(config.OpCreate))
	return err
}

func (r *Runner) DestroyTopic(ctx context.Context) error {
	_, err := r.Run(ctx, config.OpDestroy, r.cfg.TopicAdminCommand(config.OpDestroy))
	return err
}

func (r *Runner) Shutdown(ctx context.Context) error {
	_, err := r.Run(ctx, config.OpShutdown, r.cfg.ShutdownCommand())
	return err
}
