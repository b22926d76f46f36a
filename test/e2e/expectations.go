package e2e

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
)

// ScenarioPassed verifies the run reached Done and exits 0.
func ScenarioPassed() Expectation {
	return func(ctx *Context) error {
		res := ctx.result
		if !res.Passed() || res.ExitCode() != 0 {
			return fmt.Errorf("expected scenario to pass, got state %s (failed step %q): %v", res.State, res.FailedStep, res.Err)
		}
		return nil
	}
}

// ScenarioFailedAt verifies the run stopped at step with an error of kind.
func ScenarioFailedAt(step string, kind types.ErrorKind) Expectation {
	return func(ctx *Context) error {
		res := ctx.result
		if res.State != types.StateFailed {
			return fmt.Errorf("expected state %s, got %s", types.StateFailed, res.State)
		}
		if res.FailedStep != step {
			return fmt.Errorf("expected failure at step %q, got %q", step, res.FailedStep)
		}
		if got := types.KindOf(res.Err); got != kind {
			return fmt.Errorf("expected %s error, got %s: %v", kind, got, res.Err)
		}
		if res.ExitCode() != 1 {
			return fmt.Errorf("expected exit code 1, got %d", res.ExitCode())
		}
		return nil
	}
}

// ErrorWraps verifies target is in the chain of the run's error.
func ErrorWraps(target error) Expectation {
	return func(ctx *Context) error {
		if !errors.Is(ctx.result.Err, target) {
			return fmt.Errorf("expected error to wrap %v, got %v", target, ctx.result.Err)
		}
		return nil
	}
}

// ComponentStatus verifies the collected exit status of broker, subscriber or publisher.
func ComponentStatus(name string, status int) Expectation {
	return func(ctx *Context) error {
		got, ok := ctx.result.Statuses[name]
		if !ok {
			return fmt.Errorf("no status collected for %s", name)
		}
		if got != status {
			return fmt.Errorf("expected %s status %d, got %d", name, status, got)
		}
		return nil
	}
}

// ProgressShows verifies each line appears in the progress output, in order.
func ProgressShows(lines ...string) Expectation {
	return func(ctx *Context) error {
		out := ctx.output.String()
		pos := 0
		for _, line := range lines {
			i := strings.Index(out[pos:], line)
			if i < 0 {
				return fmt.Errorf("progress output missing %q after offset %d:\n%s", line, pos, out)
			}
			pos += i + len(line)
		}
		return nil
	}
}

// ProgressLacks verifies text never appears in the progress output.
func ProgressLacks(text string) Expectation {
	return func(ctx *Context) error {
		if strings.Contains(ctx.output.String(), text) {
			return fmt.Errorf("progress output unexpectedly contains %q:\n%s", text, ctx.output.String())
		}
		return nil
	}
}

// JournalInOrder verifies the fakes recorded entries in this relative order.
func JournalInOrder(entries ...string) Expectation {
	return func(ctx *Context) error {
		journal := ctx.journal()
		next := 0
		for _, line := range journal {
			if next < len(entries) && line == entries[next] {
				next++
			}
		}
		if next != len(entries) {
			return fmt.Errorf("journal %q does not contain %q in order", journal, entries)
		}
		return nil
	}
}

// JournalLacks verifies no fake ever recorded entry.
func JournalLacks(entry string) Expectation {
	return func(ctx *Context) error {
		for _, line := range ctx.journal() {
			if line == entry {
				return fmt.Errorf("journal unexpectedly contains %q", entry)
			}
		}
		return nil
	}
}

// LockFileRemoved verifies no subscriber lock is left in the scenario directory.
func LockFileRemoved() Expectation {
	return func(ctx *Context) error {
		if _, err := os.Stat(filepath.Join(ctx.testDir, "subscriber.lock")); !os.IsNotExist(err) {
			return fmt.Errorf("lock file still present (stat error %v)", err)
		}
		return nil
	}
}

// NoProcessLeft verifies every spawned process has been reaped and a
// further cleanup finds nothing to kill.
func NoProcessLeft() Expectation {
	return func(ctx *Context) error {
		for _, h := range ctx.session.Launcher.Handles() {
			if !h.Exited() {
				return fmt.Errorf("%s (pid %d) was not reaped", h.Name, h.PID())
			}
		}
		if n := ctx.session.Launcher.KillAll(); n != 0 {
			return fmt.Errorf("repeated cleanup delivered %d signal(s)", n)
		}
		return nil
	}
}
