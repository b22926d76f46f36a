package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/downfa11-org/pubsub-harness/util"
	"gopkg.in/yaml.v3"
)

// TopLevelPlaceholder is replaced by TopLevel in every option fragment.
const TopLevelPlaceholder = "TOPLEVELDIR"

type BinConfig struct {
	Broker      string `yaml:"broker" json:"broker"`
	BrokerAdmin string `yaml:"broker_admin" json:"broker_admin"`
	TopicAdmin  string `yaml:"topic_admin" json:"topic_admin"`
	Publisher   string `yaml:"publisher" json:"publisher"`
	Subscriber  string `yaml:"subscriber" json:"subscriber"`
}

type ServiceConfig struct {
	Container             string `yaml:"container" json:"container"`
	Name                  string `yaml:"name" json:"name"`
	Factory               string `yaml:"factory" json:"factory"`
	ManagerEndpoints      string `yaml:"manager_endpoints" json:"manager_endpoints"`
	TopicManagerEndpoints string `yaml:"topic_manager_endpoints" json:"topic_manager_endpoints"`
	TopicManagerIdentity  string `yaml:"topic_manager_identity" json:"topic_manager_identity"`
	DBDir                 string `yaml:"db_dir" json:"db_dir"`
	ReadyMarker           string `yaml:"ready_marker" json:"ready_marker"`
}

type SubscriberConfig struct {
	LockFile    string `yaml:"lock_file" json:"lock_file"`
	ReadyMarker string `yaml:"ready_marker" json:"ready_marker"`
}

// Config is the service configuration of one scenario run. It is assembled
// once (file, env, flags, Normalize) and only read afterwards.
type Config struct {
	TopLevel string        `yaml:"toplevel" json:"toplevel"`
	TestDir  string        `yaml:"test_dir" json:"test_dir"`
	LogLevel util.LogLevel `yaml:"log_level" json:"log_level"`

	// Environment option fragments
	ServerOptions       string `yaml:"server_options" json:"server_options"`
	ClientOptions       string `yaml:"client_options" json:"client_options"`
	ClientServerOptions string `yaml:"client_server_options" json:"client_server_options"`

	Bin        BinConfig        `yaml:"bin" json:"bin"`
	Service    ServiceConfig    `yaml:"service" json:"service"`
	Subscriber SubscriberConfig `yaml:"subscriber" json:"subscriber"`
	Topic      string           `yaml:"topic" json:"topic"`

	// Lock-file polling
	LockPollAttempts int           `yaml:"lock_poll_attempts" json:"lock_poll_attempts"`
	LockPollInterval time.Duration `yaml:"lock_poll_interval" json:"lock_poll_interval"`

	// Timeouts, zero means unbounded
	ReadinessTimeout time.Duration `yaml:"readiness_timeout" json:"readiness_timeout"`
	ScenarioTimeout  time.Duration `yaml:"scenario_timeout" json:"scenario_timeout"`
	ReapTimeout      time.Duration `yaml:"reap_timeout" json:"reap_timeout"`

	Env map[string]string `yaml:"env" json:"env"`

	EnableExporter bool   `yaml:"enable_exporter" json:"enable_exporter"`
	ExporterPort   int    `yaml:"exporter_port" json:"exporter_port"`
	MetricsFile    string `yaml:"metrics_file" json:"metrics_file"`
}

// Load reads a YAML or JSON config file. An empty path yields an empty config;
// callers apply overrides and then Normalize.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PUBSUB_HARNESS_* variables.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("PUBSUB_HARNESS_TOPLEVEL"); ok {
		cfg.TopLevel = v
	}
	if v, ok := lookup("PUBSUB_HARNESS_TEST_DIR"); ok {
		cfg.TestDir = v
	}
	if v, ok := lookup("PUBSUB_HARNESS_TOPIC"); ok {
		cfg.Topic = v
	}
	if v, ok := lookup("PUBSUB_HARNESS_LOG_LEVEL"); ok {
		cfg.LogLevel = util.ParseLogLevel(v)
	}
	if v, ok := lookup("PUBSUB_HARNESS_LOCK_POLL_ATTEMPTS"); ok {
		cfg.LockPollAttempts = util.ParseInt(v, cfg.LockPollAttempts)
	}
	if v, ok := lookup("PUBSUB_HARNESS_LOCK_POLL_INTERVAL"); ok {
		cfg.LockPollInterval = util.ParseDuration(v, cfg.LockPollInterval)
	}
	if v, ok := lookup("PUBSUB_HARNESS_SCENARIO_TIMEOUT"); ok {
		cfg.ScenarioTimeout = util.ParseDuration(v, cfg.ScenarioTimeout)
	}
	if v, ok := lookup("PUBSUB_HARNESS_EXPORTER"); ok {
		cfg.EnableExporter = util.ParseBool(v, cfg.EnableExporter)
	}
}
