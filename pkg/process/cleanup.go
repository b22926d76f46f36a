package process

import (
	"context"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/util"
	"golang.org/x/exp/slices"
)

// KillAll force-terminates every process this launcher spawned, newest first,
// whatever state they are believed to be in. It is safe to call repeatedly and
// never fails; the return value is the number of signals delivered.
func (l *Launcher) KillAll() int {
	handles := l.Handles()
	slices.Reverse(handles)

	killed := 0
	for _, h := range handles {
		if h.Kill() {
			killed++
			util.Debug("killed %s (pid %d)", h.Name, h.PID())
		}
	}
	if killed > 0 {
		metrics.ProcessesKilled.Add(float64(killed))
		util.Warn("cleanup terminated %d process(es)", killed)
	}
	return killed
}

// Reap collects the exit status of every spawned process, giving up after
// timeout. Statuses are ignored; this only avoids leaving zombies behind.
func (l *Launcher) Reap(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, h := range l.Handles() {
		if _, err := h.Wait(ctx); err != nil && ctx.Err() != nil {
			util.Warn("gave up reaping %s (pid %d): %v", h.Name, h.PID(), err)
			return
		}
	}
}
