package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
)

// Handle owns one spawned process: its stdout as a stream of lines and its
// eventual exit status. The stream closing is the terminal event; Wait reads
// it to the end before reaping the process.
type Handle struct {
	Name        string
	CommandLine string
	Started     time.Time

	cmd   *exec.Cmd
	lines chan string

	drainOnce sync.Once
	drained   chan struct{}

	waitOnce sync.Once
	waitDone chan struct{}
	status   int
	waitErr  error

	mu          sync.Mutex
	reportedPID int
	killed      bool
}

func newHandle(name, commandLine string, cmd *exec.Cmd, stdout io.Reader) *Handle {
	h := &Handle{
		Name:        name,
		CommandLine: commandLine,
		Started:     time.Now(),
		cmd:         cmd,
		lines:       make(chan string, 64),
		drained:     make(chan struct{}),
		waitDone:    make(chan struct{}),
	}
	go h.readLines(stdout)
	return h
}

func (h *Handle) readLines(r io.Reader) {
	defer close(h.lines)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			h.lines <- strings.TrimRight(line, "\r\n")
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				util.Debug("%s: stdout read stopped: %v", h.Name, err)
			}
			return
		}
	}
}

// Lines is the child's stdout, one entry per line, closed at end of stream.
// Only one consumer may read it at a time.
func (h *Handle) Lines() <-chan string {
	return h.lines
}

// Drain starts copying the remaining output to w in the background. Only the
// first call takes effect; a nil w discards.
func (h *Handle) Drain(w io.Writer) {
	h.drainOnce.Do(func() {
		go func() {
			defer close(h.drained)
			for line := range h.lines {
				if w != nil {
					fmt.Fprintln(w, line)
				}
			}
		}()
	})
}

// Echo copies the remaining output to w and blocks until the stream closes.
func (h *Handle) Echo(ctx context.Context, w io.Writer) error {
	h.Drain(w)
	select {
	case <-h.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait collects the exit status. Output not consumed yet is discarded.
// A non-zero status is returned together with a ProcessExitNonZero error.
func (h *Handle) Wait(ctx context.Context) (int, error) {
	h.waitOnce.Do(func() {
		go h.collect()
	})
	select {
	case <-h.waitDone:
		return h.status, h.waitErr
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

func (h *Handle) collect() {
	defer close(h.waitDone)

	h.Drain(nil)
	<-h.drained

	err := h.cmd.Wait()
	h.status = 0
	if err != nil {
		h.status = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			h.status = exitErr.ExitCode()
		}
		h.waitErr = &types.Error{Kind: types.ProcessExitNonZero, Op: "wait", Name: h.Name, Status: h.status, Err: err}
	}
	metrics.ProcessExitStatus.WithLabelValues(h.Name).Set(float64(h.status))
	util.Debug("%s (pid %d) exited with status %d after %v", h.Name, h.PID(), h.status, time.Since(h.Started))
}

// Exited reports whether the exit status has been collected.
func (h *Handle) Exited() bool {
	select {
	case <-h.waitDone:
		return true
	default:
		return false
	}
}

func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// SetReportedPID records the process identifier the child printed about itself.
func (h *Handle) SetReportedPID(pid int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reportedPID = pid
}

func (h *Handle) ReportedPID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reportedPID
}

// Kill sends SIGKILL to the process group and to the self-reported PID when it
// differs. It is a no-op once the process was killed or reaped and reports
// whether a signal was delivered.
func (h *Handle) Kill() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.killed || h.Exited() || h.cmd.Process == nil {
		return false
	}
	h.killed = true

	delivered := false
	pid := h.cmd.Process.Pid
	if err := killGroup(pid); err != nil {
		util.Debug("%s: kill pid %d: %v", h.Name, pid, err)
	} else {
		delivered = true
	}
	if rp := h.reportedPID; rp > 0 && rp != pid {
		if err := killPID(rp); err != nil {
			util.Debug("%s: kill reported pid %d: %v", h.Name, rp, err)
		} else {
			delivered = true
		}
	}
	return delivered
}
