package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleback_backup_runs_total",
		Help: "Backup runs by result",
	}, []string{"result"})

	checkRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleback_check_runs_total",
		Help: "Connectivity-check runs by result",
	}, []string{"result"})

	driverDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "consoleback_driver_duration_seconds",
		Help:    "Duration of browser driver invocations",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	sessionExpiriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consoleback_session_expiries_total",
		Help: "Times the shared session transitioned to expired",
	})

	escalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consoleback_escalations_total",
		Help: "Consoles flagged for operator attention after repeated failures",
	})
)

// Result labels for run counters.
const (
	resultSuccess          = "success"
	resultAuthFailure      = "auth_failure"
	resultTransportFailure = "transport_failure"
	resultSkippedBusy      = "skipped_busy"
	resultSkippedNoSession = "skipped_needs_relogin"
)
