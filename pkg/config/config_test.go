package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/config"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/google/shlex"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()

	if cfg.TopLevel != "." {
		t.Errorf("TopLevel default incorrect: %q", cfg.TopLevel)
	}
	if cfg.Topic != "single" {
		t.Errorf("Topic default incorrect: %q", cfg.Topic)
	}
	if cfg.LockPollAttempts != 10 || cfg.LockPollInterval != time.Second {
		t.Errorf("lock polling defaults incorrect: %d/%v", cfg.LockPollAttempts, cfg.LockPollInterval)
	}
	if cfg.ScenarioTimeout != 0 {
		t.Errorf("scenario timeout should default to unbounded, got %v", cfg.ScenarioTimeout)
	}
	if cfg.ReapTimeout != 5*time.Second {
		t.Errorf("ReapTimeout default incorrect: %v", cfg.ReapTimeout)
	}
	if got := cfg.LockFilePath(); got != filepath.Join("test", "pubsub", "single", "subscriber.lock") {
		t.Errorf("LockFilePath incorrect: %s", got)
	}
	if got := cfg.BrokerReadyMarker(); got != "services ready: IceStorm" {
		t.Errorf("BrokerReadyMarker incorrect: %s", got)
	}
	if cfg.Env == nil {
		t.Errorf("Env should be initialized")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cfg := &config.Config{TopLevel: "/opt/ice", ClientOptions: "--Ice.Config=TOPLEVELDIR/config/client"}
	cfg.Normalize()
	first := *cfg
	cfg.Normalize()

	if cfg.LockFilePath() != first.LockFilePath() || cfg.ClientOptions != first.ClientOptions {
		t.Errorf("second Normalize changed the config")
	}
	if cfg.ClientOptions != "--Ice.Config=/opt/ice/config/client" {
		t.Errorf("TOPLEVELDIR not substituted: %s", cfg.ClientOptions)
	}
}

func TestBrokerCommandSplitsIntoOptions(t *testing.T) {
	cfg := &config.Config{TopLevel: "/opt/ice", TestDir: "/tmp/single run"}
	cfg.Normalize()

	args, err := shlex.Split(cfg.BrokerCommand())
	if err != nil {
		t.Fatalf("split broker command: %v", err)
	}

	want := []string{
		"/opt/ice/bin/icebox",
		"--IceBox.ServiceManager.Endpoints=default -p 12345",
		"--IceBox.Service.IceStorm=IceStormService:create",
		"--IceStorm.TopicManager.Endpoints=default -p 12346",
		"--IceBox.PrintServicesReady=IceStorm",
		"--IceBox.DBEnvName.IceStorm=/tmp/single run/db",
	}
	if strings.Join(args, "|") != strings.Join(want, "|") {
		t.Errorf("broker args mismatch\n got: %q\nwant: %q", args, want)
	}
}

func TestAdminCommands(t *testing.T) {
	cfg := &config.Config{Topic: "single"}
	cfg.Normalize()

	args, err := shlex.Split(cfg.TopicAdminCommand(config.OpCreate))
	if err != nil {
		t.Fatalf("split admin command: %v", err)
	}
	if n := len(args); n < 2 || args[n-2] != "-e" || args[n-1] != "create single" {
		t.Errorf("admin command should end with -e \"create single\": %q", args)
	}
	if !strings.Contains(cfg.TopicAdminCommand(config.OpDestroy), `"destroy single"`) {
		t.Errorf("destroy command malformed: %s", cfg.TopicAdminCommand(config.OpDestroy))
	}

	shutdown, _ := shlex.Split(cfg.ShutdownCommand())
	if shutdown[len(shutdown)-1] != "shutdown" {
		t.Errorf("shutdown command should end with shutdown: %q", shutdown)
	}

	sub, _ := shlex.Split(cfg.SubscriberCommand())
	if sub[len(sub)-1] != cfg.LockFilePath() {
		t.Errorf("subscriber command should end with the lock file: %q", sub)
	}
	if sub[len(sub)-2] != "--IceStorm.TopicManager.Proxy=IceStorm/TopicManager:default -p 12346" {
		t.Errorf("subscriber command missing topic manager reference: %q", sub)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	yml := `
toplevel: /srv/ice
topic: orders
log_level: debug
lock_poll_attempts: 3
lock_poll_interval: 250ms
service:
  name: Storm
subscriber:
  ready_marker: "adapter ready"
env:
  ICE_TRACE: "1"
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	env := map[string]string{"PUBSUB_HARNESS_TOPIC": "override", "PUBSUB_HARNESS_SCENARIO_TIMEOUT": "90"}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	cfg.Normalize()

	if cfg.Topic != "override" {
		t.Errorf("env override not applied: %s", cfg.Topic)
	}
	if cfg.ScenarioTimeout != 90*time.Second {
		t.Errorf("scenario timeout from env: %v", cfg.ScenarioTimeout)
	}
	if cfg.LogLevel != util.LogLevelDebug {
		t.Errorf("log level not parsed: %v", cfg.LogLevel)
	}
	if cfg.LockPollAttempts != 3 || cfg.LockPollInterval != 250*time.Millisecond {
		t.Errorf("lock polling not parsed: %d/%v", cfg.LockPollAttempts, cfg.LockPollInterval)
	}
	if cfg.Service.TopicManagerIdentity != "Storm/TopicManager" {
		t.Errorf("identity should follow service name: %s", cfg.Service.TopicManagerIdentity)
	}
	if cfg.Env["ICE_TRACE"] != "1" {
		t.Errorf("env map not loaded: %v", cfg.Env)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
	cfg, err := config.Load("")
	if err != nil || cfg == nil {
		t.Fatalf("empty path should give an empty config, got %v %v", cfg, err)
	}
}
