package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/google/shlex"
	"golang.org/x/exp/slices"
)

// Launcher starts external command lines and remembers every process it
// spawned so a scenario can terminate them all.
type Launcher struct {
	env    []string
	stderr io.Writer

	mu      sync.Mutex
	handles []*Handle
}

// NewLauncher returns a launcher whose children inherit the current
// environment plus env. A nil stderr means the harness's own stderr.
func NewLauncher(env map[string]string, stderr io.Writer) *Launcher {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Launcher{
		env:    mergeEnv(os.Environ(), env),
		stderr: stderr,
	}
}

func mergeEnv(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := slices.Clone(base)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, extra[k]))
	}
	return env
}

// Launch starts commandLine without waiting for it. It fails only when the
// command line is empty or malformed or the executable cannot be started.
func (l *Launcher) Launch(name, commandLine string) (*Handle, error) {
	args, err := shlex.Split(commandLine)
	if err != nil {
		return nil, types.NewError(types.LaunchFailure, "launch", name, fmt.Errorf("parse command line %q: %w", commandLine, err))
	}
	if len(args) == 0 {
		return nil, types.NewError(types.LaunchFailure, "launch", name, fmt.Errorf("empty command line"))
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = l.env
	cmd.Stderr = l.stderr
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, types.NewError(types.LaunchFailure, "launch", name, fmt.Errorf("stdout pipe: %w", err))
	}
	if err := cmd.Start(); err != nil {
		return nil, types.NewError(types.LaunchFailure, "launch", name, err)
	}

	h := newHandle(name, commandLine, cmd, stdout)

	l.mu.Lock()
	l.handles = append(l.handles, h)
	l.mu.Unlock()

	metrics.ProcessesSpawned.WithLabelValues(name).Inc()
	util.Debug("launched %s (pid %d): %s", name, h.PID(), commandLine)
	return h, nil
}

// Handles returns the spawned processes in launch order.
func (l *Launcher) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.handles)
}
