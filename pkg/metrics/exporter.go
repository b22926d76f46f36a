package metrics

import (
	"fmt"
	"net/http"

	"github.com/downfa11-org/pubsub-harness/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	prometheus.MustRegister(ScenarioRuns, StepDuration, StepFailures, CurrentState)
	prometheus.MustRegister(ProcessesSpawned, ProcessExitStatus, ProcessesKilled, AdminCommands, LockFilePolls)
}

// StartMetricsServer serves /metrics in the background for the lifetime of the run.
func StartMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		util.Info("[METRICS] Prometheus exporter listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Error("[METRICS] Failed to start metrics server: %v", err)
		}
	}()
	return srv
}

// WriteSnapshot dumps the default registry in text exposition format, for
// node_exporter's textfile collector or CI artifacts.
func WriteSnapshot(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics snapshot: %w", err)
	}
	return nil
}

// ObserveStep records one finished scenario step.
func ObserveStep(step string, seconds float64, kind string) {
	StepDuration.WithLabelValues(step).Observe(seconds)
	if kind != "" {
		StepFailures.WithLabelValues(step, kind).Inc()
	}
}
