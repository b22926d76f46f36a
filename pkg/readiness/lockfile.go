package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/spf13/afero"
)

type LockMode int

const (
	// AwaitPresence is a single check that the lock exists.
	AwaitPresence LockMode = iota
	// AwaitAbsence polls until the lock is gone.
	AwaitAbsence
)

var errLockPresent = errors.New("lock file still present")

// LockFile watches a sentinel file written and removed by another process.
// The watcher only observes it.
type LockFile struct {
	fs          afero.Fs
	path        string
	mode        LockMode
	maxAttempts int
	interval    time.Duration

	checks int
}

func NewLockFile(fs afero.Fs, path string, mode LockMode, maxAttempts int, interval time.Duration) *LockFile {
	return &LockFile{fs: fs, path: path, mode: mode, maxAttempts: maxAttempts, interval: interval}
}

func (l *LockFile) AwaitReady(ctx context.Context) error {
	if l.mode == AwaitPresence {
		return l.CheckPresence()
	}
	return l.AwaitAbsence(ctx)
}

// CheckPresence checks once that the lock exists; there is no retry.
func (l *LockFile) CheckPresence() error {
	l.checks++
	metrics.LockFilePolls.Inc()

	exists, err := afero.Exists(l.fs, l.path)
	if err != nil {
		return types.NewError(types.WatchTimeout, "check-presence", l.path, err)
	}
	if !exists {
		return types.NewError(types.WatchTimeout, "check-presence", l.path, fmt.Errorf("lock file does not exist"))
	}
	return nil
}

// AwaitAbsence polls until the lock is gone. Every check that still finds
// it counts as a failed attempt; once more than maxAttempts have failed the
// next failure is final.
func (l *LockFile) AwaitAbsence(ctx context.Context) error {
	check := func() error {
		l.checks++
		metrics.LockFilePolls.Inc()

		exists, err := afero.Exists(l.fs, l.path)
		if err != nil {
			return err
		}
		if exists {
			return errLockPresent
		}
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.interval), uint64(l.maxAttempts+1)),
		ctx,
	)
	err := backoff.RetryNotify(check, b, func(err error, next time.Duration) {
		util.Debug("%s: %v, checking again in %v", l.path, err, next)
	})
	if err != nil {
		return types.NewError(types.WatchTimeout, "await-absence", l.path,
			fmt.Errorf("after %d check(s): %w", l.checks, err))
	}
	return nil
}

func (l *LockFile) Describe() string {
	if l.mode == AwaitPresence {
		return fmt.Sprintf("lock file %s to exist", l.path)
	}
	return fmt.Sprintf("lock file %s to be removed", l.path)
}

// Checks is the number of existence checks performed so far.
func (l *LockFile) Checks() int { return l.checks }
