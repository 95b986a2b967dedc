package influx

import (
	"fmt"
	"strings"
	"time"

	"point-record/core/point"
)

// Flux time literals are limited to the nanosecond int64 range.
const (
	minSeconds = -9223372036
	maxSeconds = 9223372035
)

func clampSeconds(t int64) int64 {
	switch {
	case t < minSeconds:
		return minSeconds
	case t > maxSeconds:
		return maxSeconds
	}
	return t
}

func fluxTime(t int64) string {
	return formatSeconds(clampSeconds(t))
}

// fluxStop is the exclusive stop matching an inclusive end.
func fluxStop(end int64) string {
	return formatSeconds(clampSeconds(end) + 1)
}

func formatSeconds(t int64) string {
	return time.Unix(t, 0).UTC().Format(time.RFC3339)
}

// quote escapes s as a Flux string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// rangeQuery selects the points of id within r. Flux stop is exclusive.
func rangeQuery(cfg Config, id string, r point.TimeRange) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %s and r.series == %s)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"])`,
		quote(cfg.Bucket), fluxTime(r.Start), fluxStop(r.End), quote(cfg.Measurement), quote(id))
}

// identifiersQuery lists the series tag values of both measurements.
func identifiersQuery(cfg Config) string {
	return fmt.Sprintf(`import "influxdata/influxdb/schema"

schema.tagValues(
  bucket: %s,
  tag: "series",
  predicate: (r) => r._measurement == %s or r._measurement == %s,
  start: %s,
)`,
		quote(cfg.Bucket), quote(cfg.Measurement), quote(cfg.registry()), fluxTime(minSeconds))
}

// deletePredicate selects one series of one measurement for the delete API.
func deletePredicate(measurement, id string) string {
	return fmt.Sprintf(`_measurement=%s AND series=%s`, quote(measurement), quote(id))
}
