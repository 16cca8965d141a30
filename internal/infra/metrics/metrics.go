// Package metrics provides Prometheus metrics for wildtrail: event
// ingestion, points, achievements, challenge and route lifecycle, the
// snapshot store and daemon health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wildtrail"

// ─── Events ─────────────────────────────────────────────────────────────────

// EventsProcessed tracks ingested activity events by kind and outcome.
var EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "events_processed_total",
	Help:      "Total activity events processed.",
}, []string{"kind", "accepted"})

// OperationLatency tracks engine operation duration including the save.
var OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "operation_latency_seconds",
	Help:      "Engine operation duration in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
}, []string{"op"})

// ─── Points & Levels ────────────────────────────────────────────────────────

// PointsAwarded tracks points credited per ledger category.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "points_awarded_total",
	Help:      "Total points credited by category.",
}, []string{"category"})

// LevelUps tracks level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "level_ups_total",
	Help:      "Total level-ups across users.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked tracks unlocks per achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "achievements_unlocked_total",
	Help:      "Total achievement unlocks by id.",
}, []string{"achievement"})

// ─── Challenges & Routes ────────────────────────────────────────────────────

// ChallengesResolved tracks challenge outcomes by kind and final state.
var ChallengesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "challenges_resolved_total",
	Help:      "Total challenge instances resolved.",
}, []string{"kind", "state", "reason"})

// WaypointsCompleted tracks completed route waypoints.
var WaypointsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "waypoints_completed_total",
	Help:      "Total route waypoints completed.",
})

// SweepExpired tracks instances expired by the background sweeper.
var SweepExpired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sweep_expired_total",
	Help:      "Total challenge and route instances expired by the sweeper.",
})

// ─── Sessions & Store ───────────────────────────────────────────────────────

// SessionsOpen tracks engines currently held by the daemon.
var SessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "sessions_open",
	Help:      "Number of open user sessions.",
})

// StoreErrors tracks failed store operations.
var StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "store_errors_total",
	Help:      "Total failed snapshot store operations.",
}, []string{"op"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts per check.",
}, []string{"check"})
