package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/downfa11-org/pubsub-harness/util"
)

func (cfg *Config) Normalize() {
	if strings.TrimSpace(cfg.TopLevel) == "" {
		cfg.TopLevel = "."
	}
	if strings.TrimSpace(cfg.TestDir) == "" {
		cfg.TestDir = filepath.Join(cfg.TopLevel, "test", "pubsub", "single")
	}

	cfg.ServerOptions = cfg.expand(cfg.ServerOptions)
	cfg.ClientOptions = cfg.expand(cfg.ClientOptions)
	cfg.ClientServerOptions = cfg.expand(cfg.ClientServerOptions)

	// executables are command-line prefixes; user values are used verbatim
	if cfg.Bin.Broker == "" {
		cfg.Bin.Broker = quote(filepath.Join(cfg.TopLevel, "bin", "icebox"))
	}
	if cfg.Bin.BrokerAdmin == "" {
		cfg.Bin.BrokerAdmin = quote(filepath.Join(cfg.TopLevel, "bin", "iceboxadmin"))
	}
	if cfg.Bin.TopicAdmin == "" {
		cfg.Bin.TopicAdmin = quote(filepath.Join(cfg.TopLevel, "bin", "icestormadmin"))
	}
	if cfg.Bin.Publisher == "" {
		cfg.Bin.Publisher = quote(filepath.Join(cfg.TestDir, "publisher"))
	}
	if cfg.Bin.Subscriber == "" {
		cfg.Bin.Subscriber = quote(filepath.Join(cfg.TestDir, "subscriber"))
	}

	// hosted service
	if cfg.Service.Container == "" {
		cfg.Service.Container = "IceBox"
	}
	if cfg.Service.Name == "" {
		cfg.Service.Name = "IceStorm"
	}
	if cfg.Service.Factory == "" {
		cfg.Service.Factory = "IceStormService:create"
	}
	if cfg.Service.ManagerEndpoints == "" {
		cfg.Service.ManagerEndpoints = "default -p 12345"
	}
	if cfg.Service.TopicManagerEndpoints == "" {
		cfg.Service.TopicManagerEndpoints = "default -p 12346"
	}
	if cfg.Service.TopicManagerIdentity == "" {
		cfg.Service.TopicManagerIdentity = cfg.Service.Name + "/TopicManager"
	}
	if cfg.Service.DBDir == "" {
		cfg.Service.DBDir = "db"
	}
	if cfg.Service.ReadyMarker == "" {
		cfg.Service.ReadyMarker = "services ready: %s"
	}

	if cfg.Subscriber.LockFile == "" {
		cfg.Subscriber.LockFile = "subscriber.lock"
	}

	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "single"
	}

	if cfg.LockPollAttempts <= 0 {
		cfg.LockPollAttempts = 10
	}
	if cfg.LockPollInterval <= 0 {
		cfg.LockPollInterval = time.Second
	}
	if cfg.ReadinessTimeout < 0 {
		util.Warn("Invalid readiness_timeout (%v), disabling", cfg.ReadinessTimeout)
		cfg.ReadinessTimeout = 0
	}
	if cfg.ScenarioTimeout < 0 {
		util.Warn("Invalid scenario_timeout (%v), disabling", cfg.ScenarioTimeout)
		cfg.ScenarioTimeout = 0
	}
	if cfg.ReapTimeout <= 0 {
		cfg.ReapTimeout = 5 * time.Second
	}
	if cfg.ExporterPort <= 0 {
		cfg.ExporterPort = 9100
	}
	if cfg.Env == nil {
		cfg.Env = map[string]string{}
	}
}

func (cfg *Config) expand(opts string) string {
	return strings.TrimSpace(strings.ReplaceAll(opts, TopLevelPlaceholder, cfg.TopLevel))
}

// LockFilePath is the subscriber lock file, resolved against TestDir.
func (cfg *Config) LockFilePath() string {
	return cfg.inTestDir(cfg.Subscriber.LockFile)
}

// DBDirPath is the broker's persistent storage directory, resolved against TestDir.
func (cfg *Config) DBDirPath() string {
	return cfg.inTestDir(cfg.Service.DBDir)
}

func (cfg *Config) inTestDir(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.TestDir, p)
}
