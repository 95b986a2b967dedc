// Package buffer provides the in-memory point buffer that fronts the backing store.
//
// The Store keeps one time-ordered slice of points per series together with the
// units the series was registered with. It answers point, neighbour and range
// lookups and reports the range it currently covers.
//
// # Contiguity
//
// The covered range of a series is the span from its first to its last point.
// To keep that span honest, inserting points whose span does not touch the
// covered range replaces the series contents instead of merging with them.
// The reconcile engine relies on this when it classifies a query against the
// covered range.
//
// # Usage
//
//	buf := buffer.New(buffer.Config{Capacity: 10000})
//	buf.AddPoints("flow", points)
//	covered, ok := buf.CoveredRange("flow")
package buffer
