// Package metrics defines and registers the tracker's Prometheus metrics.
// It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rollcall"

// LoginsTotal counts authentication attempts.
// Labels:
//   - role: the requested role ("admin", "teacher", "student")
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// AttendanceMutationsTotal counts successful ledger mutations.
// Label:
//   - op: "mark", "toggle", "bulk", "clear"
var AttendanceMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_mutations_total",
		Help:      "Total number of successful attendance mutations, by operation.",
	},
	[]string{"op"},
)

// PolicyDenialsTotal counts operations rejected by the access policy.
// Labels:
//   - role: the denied role
//   - action: the attempted action
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of role-based denials, by role and action.",
	},
	[]string{"role", "action"},
)

// DailyLockRejectionsTotal counts teacher mutations blocked by the
// once-per-day lock.
var DailyLockRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_lock_rejections_total",
		Help:      "Total number of teacher operations blocked by the daily lock.",
	},
)

// SnapshotSavesTotal counts snapshot persistence attempts.
// Label:
//   - trigger: "save", "autosave", "shutdown"
//   - result: "ok" or "error"
var SnapshotSavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_saves_total",
		Help:      "Total number of state snapshot writes, by trigger and result.",
	},
	[]string{"trigger", "result"},
)
