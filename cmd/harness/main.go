package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/downfa11-org/pubsub-harness/pkg/scenario"
	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "pubsub-harness",
		Usage:  "run the single-topic publish/subscribe scenario against a broker",
		Flags:  flags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		util.Fatal("%v", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	util.SetLevel(cfg.LogLevel)

	if cfg.EnableExporter {
		srv := metrics.StartMetricsServer(cfg.ExporterPort)
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := scenario.NewSession(cfg, afero.NewOsFs(), os.Stdout)
	res := scenario.NewDriver(session).Run(ctx)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteSnapshot(cfg.MetricsFile); err != nil {
			util.Warn("%v", err)
		}
	}

	if code := res.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}
