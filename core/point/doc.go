// Package point defines the value types shared by every layer of the record:
// measurement points and closed time ranges.
//
// # Points
//
// A Point carries a unix-second timestamp, a value, an opaque quality code and a
// confidence. Points are passed by value. Lookups signal "not found" with a
// second boolean return rather than a sentinel point.
//
// # Time Ranges
//
// TimeRange is a closed interval. Intersection classifies a requested range
// against a reference range (typically the range held in the buffer cache):
//
//	cached:      |-------|
//	internal:      |---|
//	left:     |-----|
//	right:           |-----|
//	external: |-------------|
//
// The reconcile engine uses the classification to decide which parts of a
// query must be fetched from the backing store.
package point
