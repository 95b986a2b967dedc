package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "point_record"

// Metrics holds the Prometheus collectors updated by the reconcile engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// AdapterCalls counts backing-store calls by operation.
	// Labels: op (select_range, select_previous, select_next, insert, remove, ...)
	AdapterCalls *prometheus.CounterVec

	// BufferLookups counts buffer lookups by operation and result.
	// Labels: op (point_at, point_before, point_after, range), result (hit, miss)
	BufferLookups *prometheus.CounterVec

	// RangeClassifications counts range queries by overlap class.
	// Labels: class (none, other_internal, left, right, other_external, memoized, offline)
	RangeClassifications *prometheus.CounterVec

	// ConnectFailures counts connection gates that gave up after the retry ceiling.
	ConnectFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
// If reg is nil the collectors are created but not registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AdapterCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adapter_calls_total",
				Help:      "Backing-store adapter calls by operation.",
			},
			[]string{"op"},
		),
		BufferLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "buffer_lookups_total",
				Help:      "Buffer cache lookups by operation and result.",
			},
			[]string{"op", "result"},
		),
		RangeClassifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "range_classifications_total",
				Help:      "Range queries by overlap classification against the buffer.",
			},
			[]string{"class"},
		),
		ConnectFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connect_failures_total",
				Help:      "Connection gates that exhausted the retry ceiling.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.AdapterCalls, m.BufferLookups, m.RangeClassifications, m.ConnectFailures)
	}
	return m
}

// AdapterCall records one backing-store call.
func (m *Metrics) AdapterCall(op string) {
	if m == nil {
		return
	}
	m.AdapterCalls.WithLabelValues(op).Inc()
}

// BufferLookup records a buffer lookup outcome.
func (m *Metrics) BufferLookup(op string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.BufferLookups.WithLabelValues(op, result).Inc()
}

// Classified records the classification of a range query.
func (m *Metrics) Classified(class string) {
	if m == nil {
		return
	}
	m.RangeClassifications.WithLabelValues(class).Inc()
}

// ConnectFailed records an exhausted connection gate.
func (m *Metrics) ConnectFailed() {
	if m == nil {
		return
	}
	m.ConnectFailures.Inc()
}
