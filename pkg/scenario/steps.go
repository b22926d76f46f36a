package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/downfa11-org/pubsub-harness/pkg/process"
	"github.com/downfa11-org/pubsub-harness/pkg/readiness"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

type step struct {
	name  string
	label string
	// to is the state reached once the step succeeds
	to  types.State
	run func(ctx context.Context, s *Session) error
}

func scenarioSteps(s *Session) []step {
	service := strings.ToLower(s.Config.Service.Name)
	return []step{
		{"broker-up", "starting " + service + " service", types.StateBrokerUp, startBroker},
		{"topic-create", "creating topic", types.StateTopicCreated, createTopic},
		{"subscriber-up", "starting subscriber", types.StateTopicCreated, startSubscriber},
		{"lock-created", "checking subscriber lockfile creation", types.StateSubscriberUp, checkLockCreated},
		{"publisher-up", "starting publisher", types.StatePublishing, startPublisher},
		{"publish", "", types.StatePublished, echoPublisher},
		{"lock-removed", "checking subscriber lockfile removal", types.StateSubscriberDone, awaitLockRemoved},
		{"topic-destroy", "destroying topic", types.StateTopicDestroyed, destroyTopic},
		{"shutdown", "shutting down " + service + " service", types.StateShutdown, shutdownBroker},
		{"collect", "", types.StateDone, collectStatuses},
	}
}

func startBroker(ctx context.Context, s *Session) error {
	cfg := s.Config
	if err := CleanDBDir(s.Fs, cfg.DBDirPath()); err != nil {
		return types.NewError(types.LaunchFailure, "clean-db", cfg.DBDirPath(), err)
	}

	h, err := s.Launcher.Launch("broker", cfg.BrokerCommand())
	if err != nil {
		return err
	}
	s.broker = h
	return awaitOutput(ctx, s, h, cfg.BrokerReadyMarker())
}

func createTopic(ctx context.Context, s *Session) error {
	return s.Admin.CreateTopic(ctx)
}

func startSubscriber(ctx context.Context, s *Session) error {
	cfg := s.Config
	RemoveStaleLock(s.Fs, cfg.LockFilePath())

	h, err := s.Launcher.Launch("subscriber", cfg.SubscriberCommand())
	if err != nil {
		return err
	}
	s.subscriber = h
	return awaitOutput(ctx, s, h, cfg.Subscriber.ReadyMarker)
}

// awaitOutput blocks until h prints marker, records the PID it reported and
// keeps its remaining output flowing to the debug log.
func awaitOutput(ctx context.Context, s *Session, h *process.Handle, marker string) error {
	src := readiness.NewMarkerSource(h.Name, h.Lines(), marker).WithPID()
	err := readiness.Await(ctx, src, s.Config.ReadinessTimeout)
	if pid := src.PID(); pid > 0 {
		h.SetReportedPID(pid)
	}
	if err != nil {
		return err
	}
	h.Drain(util.DebugWriter(h.Name))
	return nil
}

func checkLockCreated(ctx context.Context, s *Session) error {
	cfg := s.Config
	w := readiness.NewLockFile(s.Fs, cfg.LockFilePath(), readiness.AwaitPresence, cfg.LockPollAttempts, cfg.LockPollInterval)
	return readiness.Await(ctx, w, 0)
}

func startPublisher(_ context.Context, s *Session) error {
	h, err := s.Launcher.Launch("publisher", s.Config.PublisherCommand())
	if err != nil {
		return err
	}
	s.publisher = h
	return nil
}

// echoPublisher copies the publisher's output until it closes its stream.
func echoPublisher(ctx context.Context, s *Session) error {
	if err := s.publisher.Echo(ctx, s.Reporter.Output()); err != nil {
		return fmt.Errorf("echo publisher output: %w", err)
	}
	return nil
}

func awaitLockRemoved(ctx context.Context, s *Session) error {
	cfg := s.Config
	w := readiness.NewLockFile(s.Fs, cfg.LockFilePath(), readiness.AwaitAbsence, cfg.LockPollAttempts, cfg.LockPollInterval)
	return readiness.Await(ctx, w, 0)
}

func destroyTopic(ctx context.Context, s *Session) error {
	return s.Admin.DestroyTopic(ctx)
}

func shutdownBroker(ctx context.Context, s *Session) error {
	return s.Admin.Shutdown(ctx)
}

// collectStatuses reaps broker, subscriber and publisher. Every non-zero
// status is reported, not just the first.
func collectStatuses(ctx context.Context, s *Session) error {
	var errs *multierror.Error
	handles := s.handles()
	for _, name := range []string{"broker", "subscriber", "publisher"} {
		h := handles[name]
		status, err := h.Wait(ctx)
		s.result.Statuses[name] = status
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// CleanDBDir empties the broker's storage directory, creating it if needed.
func CleanDBDir(fs afero.Fs, dir string) error {
	if err := fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// RemoveStaleLock deletes a lock file left by an earlier run. A missing file
// is the normal case.
func RemoveStaleLock(fs afero.Fs, path string) {
	err := fs.Remove(path)
	switch {
	case err == nil:
		util.Info("removed stale lock file %s", path)
	case !errors.Is(err, os.ErrNotExist):
		util.Warn("could not remove stale lock file %s: %v", path, err)
	}
}
