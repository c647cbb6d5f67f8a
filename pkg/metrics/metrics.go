// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsScoredTotal tracks scored records by outcome
	RecordsScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "scoring",
			Name:      "records_total",
			Help:      "Total number of records scored by outcome",
		},
		[]string{"tenant_id", "status"},
	)

	// MatchOutcomesTotal tracks matcher results by tier
	MatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "outcomes_total",
			Help:      "Total number of match attempts by result type",
		},
		[]string{"tenant_id", "match_type"},
	)

	// HeaderResolutionsTotal tracks header resolutions by path
	HeaderResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "schema",
			Name:      "header_resolutions_total",
			Help:      "Total number of header resolutions by path (exact, fuzzy, unresolved)",
		},
		[]string{"entity_type", "path"},
	)

	// BatchRecordsTotal tracks batch scoring records by result
	BatchRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "processor",
			Name:      "batch_records_total",
			Help:      "Total number of batch-processed records by result",
		},
		[]string{"tenant_id", "result"},
	)

	// SnapshotReloadsTotal tracks rule snapshot cache reloads
	SnapshotReloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "rulecache",
			Name:      "snapshot_reloads_total",
			Help:      "Total number of rule table snapshot reloads",
		},
	)

	// LockWaitDuration tracks how long write-backs wait on record locks
	LockWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "locks",
			Name:      "wait_duration_seconds",
			Help:      "Time spent waiting to acquire record write locks",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

// RecordMatchOutcome increments the match outcome counter
func RecordMatchOutcome(tenantID, matchType string) {
	MatchOutcomesTotal.WithLabelValues(tenantID, matchType).Inc()
}

// RecordScored increments the scored-records counter
func RecordScored(tenantID, status string) {
	RecordsScoredTotal.WithLabelValues(tenantID, status).Inc()
}

// RecordLockWait observes a lock acquisition wait
func RecordLockWait(d time.Duration) {
	LockWaitDuration.Observe(d.Seconds())
}
