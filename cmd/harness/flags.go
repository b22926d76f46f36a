package main

import (
	"github.com/downfa11-org/pubsub-harness/pkg/config"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/urfave/cli/v2"
)

const (
	FlagConfig          = "config"
	FlagTopLevel        = "toplevel"
	FlagTestDir         = "test-dir"
	FlagTopic           = "topic"
	FlagLogLevel        = "log-level"
	FlagScenarioTimeout = "scenario-timeout"
	FlagReadyTimeout    = "readiness-timeout"
	FlagExporter        = "exporter"
	FlagExporterPort    = "exporter-port"
	FlagMetricsFile     = "metrics-file"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    FlagConfig,
		Aliases: []string{"c"},
		Usage:   "YAML or JSON config file",
		EnvVars: []string{"PUBSUB_HARNESS_CONFIG"},
	},
	&cli.StringFlag{
		Name:  FlagTopLevel,
		Usage: "distribution root substituted for " + config.TopLevelPlaceholder,
	},
	&cli.StringFlag{
		Name:  FlagTestDir,
		Usage: "scenario directory holding the publisher, subscriber and lock file",
	},
	&cli.StringFlag{
		Name:  FlagTopic,
		Usage: "topic to create, publish to and destroy",
	},
	&cli.StringFlag{
		Name:  FlagLogLevel,
		Usage: "debug, info, warn or error",
	},
	&cli.DurationFlag{
		Name:  FlagScenarioTimeout,
		Usage: "bound on the whole run, 0 for none",
	},
	&cli.DurationFlag{
		Name:  FlagReadyTimeout,
		Usage: "bound on each readiness wait, 0 for none",
	},
	&cli.BoolFlag{
		Name:  FlagExporter,
		Usage: "serve Prometheus metrics while the scenario runs",
	},
	&cli.IntFlag{
		Name:  FlagExporterPort,
		Usage: "Prometheus exporter port",
	},
	&cli.StringFlag{
		Name:  FlagMetricsFile,
		Usage: "write a Prometheus text snapshot here when the run ends",
	},
}

// loadConfig layers file, environment and flags, then fills defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(FlagConfig))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)

	if c.IsSet(FlagTopLevel) {
		cfg.TopLevel = c.String(FlagTopLevel)
	}
	if c.IsSet(FlagTestDir) {
		cfg.TestDir = c.String(FlagTestDir)
	}
	if c.IsSet(FlagTopic) {
		cfg.Topic = c.String(FlagTopic)
	}
	if c.IsSet(FlagLogLevel) {
		cfg.LogLevel = util.ParseLogLevel(c.String(FlagLogLevel))
	}
	if c.IsSet(FlagScenarioTimeout) {
		cfg.ScenarioTimeout = c.Duration(FlagScenarioTimeout)
	}
	if c.IsSet(FlagReadyTimeout) {
		cfg.ReadinessTimeout = c.Duration(FlagReadyTimeout)
	}
	if c.IsSet(FlagExporter) {
		cfg.EnableExporter = c.Bool(FlagExporter)
	}
	if c.IsSet(FlagExporterPort) {
		cfg.ExporterPort = c.Int(FlagExporterPort)
	}
	if c.IsSet(FlagMetricsFile) {
		cfg.MetricsFile = c.String(FlagMetricsFile)
	}

	cfg.Normalize()
	return cfg, nil
}
