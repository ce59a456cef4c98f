// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

var (
	// Transitions counts attempted status changes by entity, edge and outcome.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donor_matching_transitions_total",
		Help: "Status transitions attempted, by entity, from/to status and outcome",
	}, []string{"entity", "from", "to", "outcome"})

	// CompatibleDonors records how many donors each compatibility query returned.
	CompatibleDonors = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donor_matching_compatible_donors",
		Help:    "Number of compatible donors returned per query",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"request_type"})

	// StoreLatency records record store latency by operation and table.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donor_matching_store_latency_seconds",
		Help:    "Record store latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LockWait records time spent acquiring per-record locks.
	LockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "donor_matching_lock_wait_seconds",
		Help:    "Time spent waiting for a record lock",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveTransition counts one transition attempt.
func ObserveTransition(entity domain.Entity, from, to string, err error) {
	Transitions.WithLabelValues(string(entity), from, to, Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDonorUnavailable):
		return "donor_unavailable"
	case errors.Is(err, domain.ErrIncompatibleDonor):
		return "incompatible_donor"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// TrackStore returns a func that records the elapsed store latency, for use
// with defer.
func TrackStore(operation, table string) func() {
	start := time.Now()
	return func() {
		StoreLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackLockWait returns a func that records the elapsed lock wait.
func TrackLockWait() func() {
	start := time.Now()
	return func() {
		LockWait.Observe(time.Since(start).Seconds())
	}
}
