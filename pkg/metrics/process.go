package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProcessesSpawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_processes_spawned_total",
			Help: "External processes started by the launcher",
		},
		[]string{"name"},
	)

	ProcessExitStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harness_process_exit_status",
			Help: "Last collected exit status per process (-1 when killed)",
		},
		[]string{"name"},
	)

	ProcessesKilled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harness_processes_killed_total",
		Help: "Kill signals delivered by the cleanup coordinator",
	})

	AdminCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_admin_commands_total",
			Help: "Administrative commands by operation and outcome",
		},
		[]string{"op", "result"},
	)

	LockFilePolls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harness_lockfile_polls_total",
		Help: "Lock-file existence checks performed while waiting",
	})
)
