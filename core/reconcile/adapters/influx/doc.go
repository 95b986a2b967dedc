// Package influx implements reconcile.Adapter on an InfluxDB 2.x bucket.
//
// Each series is a tag value ("series") of one measurement with the fields
// value, quality and confidence, timestamped at second precision.
// Registrations are written to a companion measurement ("<measurement>_series")
// so that a series is listed before its first point arrives.
//
// The adapter has no units column and no singly bound query: the record finds
// neighbouring points with iterative range searches instead.
package influx
