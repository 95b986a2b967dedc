package reconcile

import (
	"context"
	"math"

	"point-record/core/point"

	"go.uber.org/zap"
)

// PointAt returns the point of id exactly at t.
// On a buffer miss it queries the backing store over t ± PointMargin and keeps
// the result in the buffer to serve nearby lookups.
func (r *Record) PointAt(ctx context.Context, id string, t int64) (point.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.buffer.PointAt(id, t); ok {
		r.metrics.BufferLookup("point_at", true)
		return p, true
	}
	r.metrics.BufferLookup("point_at", false)

	// the store was just asked about this span and the buffer has nothing here
	if r.last.contains(id, t) {
		return point.Point{}, false
	}

	if !r.ensureConnected(ctx) {
		return point.Point{}, false
	}

	margin := r.cfg.PointMarginSeconds
	pts, err := r.selectRange(ctx, id, point.TimeRange{Start: t - margin, End: t + margin})
	if err != nil {
		return point.Point{}, false
	}

	r.buffer.AddPoints(id, pts)
	if span, ok := point.Span(pts); ok && r.retained(id, pts) {
		r.last = memoRequest(id, span)
	} else {
		r.last = emptyRequest(id)
	}

	for _, p := range pts {
		if p.Time == t {
			return p, true
		}
		if p.Time > t {
			break
		}
	}
	return point.Point{}, false
}

// PointBefore returns the latest point of id strictly before t.
func (r *Record) PointBefore(ctx context.Context, id string, t int64) (point.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// past the covered range a later point may exist only in the store
	candidate, found := r.buffer.PointBefore(id, t)
	if found && t != math.MinInt64 && r.covers(id, t-1) {
		r.metrics.BufferLookup("point_before", true)
		return candidate, true
	}
	r.metrics.BufferLookup("point_before", false)

	if r.last.contains(id, t-1) {
		return candidate, found
	}

	if !r.ensureConnected(ctx) {
		return candidate, found
	}

	caps := r.adapter.Capabilities()
	if caps.SearchIteratively {
		if p, ok := r.searchPrevious(ctx, id, t); ok {
			return p, true
		}
	}

	if caps.SupportsSinglyBoundQuery {
		r.metrics.AdapterCall("select_previous")
		p, ok, err := r.adapter.SelectPrevious(ctx, id, t)
		if err != nil {
			r.fail("select_previous", err)
			return point.Point{}, false
		}
		if ok {
			return r.filter.Apply(p)
		}
	}
	return candidate, found
}

// PointAfter returns the earliest point of id strictly after t.
func (r *Record) PointAfter(ctx context.Context, id string, t int64) (point.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate, found := r.buffer.PointAfter(id, t)
	if found && t != math.MaxInt64 && r.covers(id, t+1) {
		r.metrics.BufferLookup("point_after", true)
		return candidate, true
	}
	r.metrics.BufferLookup("point_after", false)

	if r.last.contains(id, t+1) {
		return candidate, found
	}

	if !r.ensureConnected(ctx) {
		return candidate, found
	}

	caps := r.adapter.Capabilities()
	if caps.SearchIteratively {
		if p, ok := r.searchNext(ctx, id, t); ok {
			return p, true
		}
	}

	if caps.SupportsSinglyBoundQuery {
		r.metrics.AdapterCall("select_next")
		p, ok, err := r.adapter.SelectNext(ctx, id, t)
		if err != nil {
			r.fail("select_next", err)
			return point.Point{}, false
		}
		if ok {
			return r.filter.Apply(p)
		}
	}
	return candidate, found
}

// searchPrevious probes windows of SearchStride seconds walking back from t and
// returns the last point of the first non-empty window (must hold lock).
// Points found this way already went through the filter in pointsInRange.
func (r *Record) searchPrevious(ctx context.Context, id string, t int64) (point.Point, bool) {
	stride := r.cfg.SearchStrideSeconds
	window := point.TimeRange{Start: t - stride, End: t - 1}

	for i := 0; i < r.cfg.SearchMaxIterations; i++ {
		if pts := r.pointsInRange(ctx, id, window); len(pts) > 0 {
			return pts[len(pts)-1], true
		}
		window = window.Shift(-stride)
	}

	r.logger.Debug("Iterative search exhausted",
		zap.String("id", id),
		zap.Int64("time", t),
		zap.String("direction", "previous"),
	)
	return point.Point{}, false
}

// searchNext probes windows of SearchStride seconds walking forward from t and
// returns the first point of the first non-empty window (must hold lock).
func (r *Record) searchNext(ctx context.Context, id string, t int64) (point.Point, bool) {
	stride := r.cfg.SearchStrideSeconds
	window := point.TimeRange{Start: t + 1, End: t + stride}

	for i := 0; i < r.cfg.SearchMaxIterations; i++ {
		if pts := r.pointsInRange(ctx, id, window); len(pts) > 0 {
			return pts[0], true
		}
		window = window.Shift(stride)
	}

	r.logger.Debug("Iterative search exhausted",
		zap.String("id", id),
		zap.Int64("time", t),
		zap.String("direction", "next"),
	)
	return point.Point{}, false
}

// covers reports whether t lies inside the range the buffer holds for id
// (must hold lock).
func (r *Record) covers(id string, t int64) bool {
	covered, ok := r.buffer.CoveredRange(id)
	return ok && covered.Contains(t)
}

// retained reports whether the buffer still holds every point of pts, which a
// capacity trim may have evicted (must hold lock).
func (r *Record) retained(id string, pts []point.Point) bool {
	span, ok := point.Span(pts)
	if !ok {
		return true
	}
	covered, ok := r.buffer.CoveredRange(id)
	return ok && covered.ContainsRange(span)
}
