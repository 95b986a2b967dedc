// Package metrics provides Prometheus instrumentation for the point record.
//
// The reconcile engine reports adapter round trips, buffer hits and misses,
// and the overlap classification of every range query. Together these show how
// much backing-store traffic the buffer is saving.
//
// # Usage
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.AdapterCall("select_range")
//
// Metrics are exposed on the /metrics route of the HTTP server.
package metrics
