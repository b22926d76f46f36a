package e2e

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/config"
	"github.com/downfa11-org/pubsub-harness/pkg/scenario"
)

type Context struct {
	t        *testing.T
	stateDir string
	testDir  string
	cfg      *config.Config
	env      map[string]string

	session *scenario.Session
	result  *scenario.Result
	output  bytes.Buffer
	elapsed time.Duration
}

type Actions struct {
	ctx *Context
}

type Consequences struct {
	ctx *Context
}

// Given prepares a scenario whose broker, admin tools, subscriber and
// publisher are all fakes backed by a private state directory.
func Given(t *testing.T) *Context {
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("Failed to locate test binary: %v", err)
	}

	root := t.TempDir()
	c := &Context{
		t:        t,
		stateDir: filepath.Join(root, "state"),
		testDir:  filepath.Join(root, "test dir"),
	}
	for _, dir := range []string{c.stateDir, c.testDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	bin := func(role string) string { return fmt.Sprintf("%q %s", exe, role) }
	c.cfg = &config.Config{
		TopLevel: root,
		TestDir:  c.testDir,
		Topic:    "single",
		Bin: config.BinConfig{
			Broker:      bin("broker"),
			BrokerAdmin: bin("broker-admin"),
			TopicAdmin:  bin("topic-admin"),
			Publisher:   bin("publisher"),
			Subscriber:  bin("subscriber"),
		},
		LockPollAttempts: 200,
		LockPollInterval: 20 * time.Millisecond,
		ReapTimeout:      5 * time.Second,
	}
	c.env = map[string]string{
		envFake:     "1",
		envStateDir: c.stateDir,
		envEvents:   "10",
	}
	return c
}

func (c *Context) WithTopic(topic string) *Context {
	c.cfg.Topic = topic
	return c
}

func (c *Context) WithEvents(n int) *Context {
	c.env[envEvents] = strconv.Itoa(n)
	return c
}

func (c *Context) WithSilentBroker() *Context {
	c.env[envBrokerSilent] = "1"
	return c
}

func (c *Context) WithFailingTopicCreate() *Context {
	c.env[envCreateFails] = "1"
	return c
}

func (c *Context) WithStuckSubscriber() *Context {
	c.env[envSubscriberStuck] = "1"
	return c
}

func (c *Context) WithPublisherExit(code int) *Context {
	c.env[envPublisherExit] = strconv.Itoa(code)
	return c
}

// WithStaleLock leaves a lock file behind as if an earlier run had crashed.
func (c *Context) WithStaleLock() *Context {
	if err := os.WriteFile(filepath.Join(c.testDir, "subscriber.lock"), []byte("stale"), 0o644); err != nil {
		c.t.Fatalf("Failed to write stale lock: %v", err)
	}
	return c
}

func (c *Context) WithLockPolling(attempts int, interval time.Duration) *Context {
	c.cfg.LockPollAttempts = attempts
	c.cfg.LockPollInterval = interval
	return c
}

func (c *Context) WithScenarioTimeout(d time.Duration) *Context {
	c.cfg.ScenarioTimeout = d
	return c
}

func (c *Context) When() *Actions {
	return &Actions{ctx: c}
}

// Cleanup kills anything a failed assertion may have left running.
func (c *Context) Cleanup() {
	if c.session == nil {
		return
	}
	c.session.Launcher.KillAll()
	c.session.Launcher.Reap(c.cfg.ReapTimeout)
}
