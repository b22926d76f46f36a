package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "PROCESS_TEST_HELPER"

// The test binary doubles as the child process; the first argument picks
// its behavior.
func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" && len(os.Args) > 1 {
		os.Exit(runHelper(os.Args[1], os.Args[2:]))
	}
	os.Exit(m.Run())
}

func runHelper(role string, args []string) int {
	switch role {
	case "echo":
		fmt.Println(os.Getpid())
		for _, a := range args {
			fmt.Println(a)
		}
		return 0
	case "exit":
		fmt.Println("bye")
		code, _ := strconv.Atoi(args[0])
		return code
	case "env":
		fmt.Println(os.Getenv("HARNESS_TEST_VALUE"))
		return 0
	case "sleep":
		fmt.Println(os.Getpid())
		fmt.Println("ready")
		time.Sleep(time.Minute)
		return 0
	}
	return 99
}

func helperCommand(role string, args ...string) string {
	return strings.Join(append([]string{`"` + os.Args[0] + `"`, role}, args...), " ")
}

func newTestLauncher(extra map[string]string) *Launcher {
	env := map[string]string{helperEnv: "1"}
	for k, v := range extra {
		env[k] = v
	}
	return NewLauncher(env, nil)
}

func nextLine(t *testing.T, h *Handle) string {
	t.Helper()
	select {
	case line, ok := <-h.Lines():
		require.True(t, ok, "stream of %s closed early", h.Name)
		return line
	case <-time.After(10 * time.Second):
		t.Fatalf("no output from %s", h.Name)
	}
	return ""
}

func TestLaunchCapturesOutput(t *testing.T) {
	l := newTestLauncher(nil)

	h, err := l.Launch("echo", helperCommand("echo", "alpha", `"beta gamma"`))
	require.NoError(t, err)

	assert.Equal(t, strconv.Itoa(h.PID()), nextLine(t, h))
	assert.Equal(t, "alpha", nextLine(t, h))
	assert.Equal(t, "beta gamma", nextLine(t, h))

	status, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.True(t, h.Exited())
	assert.Contains(t, h.CommandLine, "beta gamma")
}

func TestWaitReportsNonZeroExit(t *testing.T) {
	l := newTestLauncher(nil)

	h, err := l.Launch("failing", helperCommand("exit", "3"))
	require.NoError(t, err)

	status, err := h.Wait(context.Background())
	assert.Equal(t, 3, status)
	require.Error(t, err)
	assert.Equal(t, types.ProcessExitNonZero, types.KindOf(err))

	again, _ := h.Wait(context.Background())
	assert.Equal(t, 3, again)
}

func TestLaunchFailure(t *testing.T) {
	l := newTestLauncher(nil)

	for name, cmdline := range map[string]string{
		"missing":    "/nonexistent/dir/broker --flag",
		"empty":      "   ",
		"unbalanced": `"unterminated`,
	} {
		t.Run(name, func(t *testing.T) {
			h, err := l.Launch(name, cmdline)
			assert.Nil(t, h)
			assert.Equal(t, types.LaunchFailure, types.KindOf(err))
		})
	}
	assert.Empty(t, l.Handles())
}

func TestLauncherPassesEnvironment(t *testing.T) {
	l := newTestLauncher(map[string]string{"HARNESS_TEST_VALUE": "xyz"})

	h, err := l.Launch("env", helperCommand("env"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", nextLine(t, h))

	_, err = h.Wait(context.Background())
	assert.NoError(t, err)
}

func TestEchoCopiesRemainingOutput(t *testing.T) {
	l := newTestLauncher(nil)

	h, err := l.Launch("publisher", helperCommand("echo", "one", "two"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, h.Echo(context.Background(), &out))
	assert.Equal(t, fmt.Sprintf("%d\none\ntwo\n", h.PID()), out.String())

	status, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestKillAllTerminatesEverything(t *testing.T) {
	l := newTestLauncher(nil)

	var handles []*Handle
	for _, name := range []string{"broker", "subscriber"} {
		h, err := l.Launch(name, helperCommand("sleep"))
		require.NoError(t, err)
		pid, err := strconv.Atoi(nextLine(t, h))
		require.NoError(t, err)
		h.SetReportedPID(pid)
		assert.Equal(t, "ready", nextLine(t, h))
		handles = append(handles, h)
	}

	assert.Equal(t, 2, l.KillAll())
	assert.Equal(t, 0, l.KillAll(), "second KillAll must be a no-op")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, h := range handles {
		status, err := h.Wait(ctx)
		assert.NotEqual(t, 0, status)
		assert.Equal(t, types.ProcessExitNonZero, types.KindOf(err))
	}
}

func TestKillAllSkipsReapedProcesses(t *testing.T) {
	l := newTestLauncher(nil)

	h, err := l.Launch("done", helperCommand("echo"))
	require.NoError(t, err)
	_, err = h.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, l.KillAll())
	l.Reap(time.Second)
}

func TestWaitHonorsContext(t *testing.T) {
	l := newTestLauncher(nil)
	defer l.Reap(5 * time.Second)
	defer l.KillAll()

	h, err := l.Launch("sleeper", helperCommand("sleep"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, h.Exited())
}
