package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/downfa11-org/pubsub-harness/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Observer) uint64 {
	m := &dto.Metric{}
	_ = h.(prometheus.Metric).Write(m)
	return m.GetHistogram().GetSampleCount()
}

func TestObserveStep(t *testing.T) {
	hist := metrics.StepDuration.WithLabelValues("creating topic")
	failures := metrics.StepFailures.WithLabelValues("creating topic", "admin_command_failed")

	initialCount := getHistogramCount(hist)
	initialFailures := getCounterValue(failures)

	metrics.ObserveStep("creating topic", 0.2, "")
	metrics.ObserveStep("creating topic", 0.4, "admin_command_failed")

	if got := getHistogramCount(hist); got != initialCount+2 {
		t.Fatalf("StepDuration count expected %v, got %v", initialCount+2, got)
	}
	if got := getCounterValue(failures); got != initialFailures+1 {
		t.Fatalf("StepFailures expected %v, got %v", initialFailures+1, got)
	}
}

func TestWriteSnapshot(t *testing.T) {
	metrics.ScenarioRuns.WithLabelValues("pass").Inc()

	path := filepath.Join(t.TempDir(), "harness.prom")
	if err := metrics.WriteSnapshot(path); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.Contains(string(data), `harness_scenario_runs_total{result="pass"}`) {
		t.Errorf("snapshot missing scenario runs counter:\n%s", data)
	}
}
