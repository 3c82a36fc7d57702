// Package metrics defines and registers all custom Prometheus metrics for the
// production tracking API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "printshop"

// ── Job lifecycle metrics ─────────────────────────────────────────────────────

// JobsCreatedTotal counts newly opened jobs.
// Label:
//   - priority: the priority assigned at creation (e.g. "rush", "normal")
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs created, by priority.",
	},
	[]string{"priority"},
)

// JobTransitionsTotal counts genuine status transitions (re-submissions of the
// current status are not counted).
// Labels:
//   - from: the status the job held before the write
//   - to:   the status applied
var JobTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_transitions_total",
		Help:      "Total number of genuine job status transitions.",
	},
	[]string{"from", "to"},
)

// ProgressEntriesTotal counts audit-trail entries appended by the lifecycle
// manager.
// Label:
//   - status: the status whose transition produced the entry
var ProgressEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "progress_entries_total",
		Help:      "Total number of lifecycle audit entries appended.",
	},
	[]string{"status"},
)

// ── Timesheet metrics ─────────────────────────────────────────────────────────

// HourLogsStartedTotal counts time entries opened.
var HourLogsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hour_logs_started_total",
		Help:      "Total number of hour logs started.",
	},
)

// SweepRunsTotal counts auto-stop sweep invocations.
var SweepRunsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_runs_total",
		Help:      "Total number of auto-stop sweep passes.",
	},
)

// SweepStoppedTotal counts hour logs force-closed by the sweep.
var SweepStoppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_stopped_total",
		Help:      "Total number of hour logs auto-stopped by the sweep.",
	},
)

// SweepErrorsTotal counts per-row failures isolated during a sweep pass.
var SweepErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_errors_total",
		Help:      "Total number of hour logs the sweep failed to close.",
	},
)

// SweepDuration measures how long one full sweep pass takes.
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of one auto-stop sweep pass.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRedirectsTotal counts scoped requests turned away for a missing
// session cookie.
// Label:
//   - scope: "admin", "staff", or "portal"
var GatewayRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_redirects_total",
		Help:      "Total number of gateway redirects to a login page, by scope.",
	},
	[]string{"scope"},
)

// ProgressReportsQueueDepth tracks events waiting in each dispatcher worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ProgressReportsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "progress_reports_queue_depth",
		Help:      "Current number of progress reports pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
