package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScenarioRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_scenario_runs_total",
			Help: "Scenario runs by final result",
		},
		[]string{"result"},
	)

	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harness_step_duration_seconds",
			Help:    "Time spent in each scenario step",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"step"},
	)

	StepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_step_failures_total",
			Help: "Scenario step failures by error kind",
		},
		[]string{"step", "kind"},
	)

	CurrentState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "harness_scenario_state",
		Help: "Numeric state of the running scenario driver",
	})
)
