// Package metrics provides Prometheus observability metrics for the
// dispatch engine, exposed on /metrics via a custom registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// REBUILD METRICS
// =============================================================================

// RebuildsTotal counts rebuild requests by outcome (ok, conflict, error).
var RebuildsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dispatch",
	Name:      "rebuilds_total",
	Help:      "Total plan rebuild requests by outcome",
}, []string{"outcome"})

// RebuildDurationSeconds tracks end-to-end rebuild time including storage.
var RebuildDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "dispatch",
	Name:      "rebuild_duration_seconds",
	Help:      "Time taken by a full plan rebuild",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
})

// WorkItemsScheduled is the number of work items placed by the last rebuild.
var WorkItemsScheduled = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "dispatch",
	Name:      "work_items_scheduled",
	Help:      "Work items placed by the most recent rebuild",
})

// WorkItemsUnscheduled is the number of eligible work items the last rebuild
// could not place. Sustained high values indicate a capacity problem.
var WorkItemsUnscheduled = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "dispatch",
	Name:      "work_items_unscheduled",
	Help:      "Eligible work items left unplaced by the most recent rebuild",
})

// =============================================================================
// LOCK METRICS
// =============================================================================

// LockConflictsTotal counts rebuild requests rejected because the window
// lock was held.
var LockConflictsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "dispatch",
	Name:      "lock_conflicts_total",
	Help:      "Rebuild requests rejected because the planning lock was held",
})

// StaleLocksSweptTotal counts lock rows removed by the background sweeper.
var StaleLocksSweptTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "dispatch",
	Name:      "stale_locks_swept_total",
	Help:      "Expired planning locks removed by the background sweeper",
})
