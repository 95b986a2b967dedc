package buffer

import (
	"sort"
	"sync"

	"point-record/core/point"
)

// Store is an ordered in-memory point store, one slice per series.
// It knows nothing about any backing store.
type Store struct {
	capacity int
	mu       sync.RWMutex
	series   map[string]*seriesBuffer
}

type seriesBuffer struct {
	units  string
	points []point.Point
}

// New creates an empty store.
func New(cfg Config) *Store {
	return &Store{
		capacity: cfg.Capacity,
		series:   make(map[string]*seriesBuffer),
	}
}

// RegisterSeries records name locally with the given units.
// Re-registering with different units drops the buffered points.
func (s *Store) RegisterSeries(name, units string) bool {
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf, exists := s.series[name]
	if !exists {
		s.series[name] = &seriesBuffer{units: units}
		return true
	}
	if buf.units != units {
		buf.units = units
		buf.points = nil
	}
	return true
}

// Units returns the locally registered units for id.
func (s *Store) Units(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf, ok := s.series[id]
	if !ok {
		return "", false
	}
	return buf.units, true
}

// Identifiers returns the registered series names, sorted.
func (s *Store) Identifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PointAt returns the point stored exactly at t.
func (s *Store) PointAt(id string, t int64) (point.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.pointsLocked(id)
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time >= t })
	if i < len(pts) && pts[i].Time == t {
		return pts[i], true
	}
	return point.Point{}, false
}

// PointBefore returns the latest point strictly before t.
func (s *Store) PointBefore(id string, t int64) (point.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.pointsLocked(id)
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time >= t })
	if i == 0 {
		return point.Point{}, false
	}
	return pts[i-1], true
}

// PointAfter returns the earliest point strictly after t.
func (s *Store) PointAfter(id string, t int64) (point.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.pointsLocked(id)
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time > t })
	if i == len(pts) {
		return point.Point{}, false
	}
	return pts[i], true
}

// PointsInRange returns a copy of the points whose time lies within r.
func (s *Store) PointsInRange(id string, r point.TimeRange) []point.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !r.IsValid() {
		return nil
	}
	pts := s.pointsLocked(id)
	lo := sort.Search(len(pts), func(i int) bool { return pts[i].Time >= r.Start })
	hi := sort.Search(len(pts), func(i int) bool { return pts[i].Time > r.End })
	if lo >= hi {
		return nil
	}
	out := make([]point.Point, hi-lo)
	copy(out, pts[lo:hi])
	return out
}

// CoveredRange returns the span of buffered points for id.
func (s *Store) CoveredRange(id string) (point.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return point.Span(s.pointsLocked(id))
}

// AddPoint inserts a single point. See AddPoints for the contiguity rule.
func (s *Store) AddPoint(id string, p point.Point) {
	s.AddPoints(id, []point.Point{p})
}

// AddPoints merges points into the series buffer. A point already present at
// the same time is replaced. If the incoming span does not touch the currently
// covered range the buffer is replaced, so the covered range never spans data
// that was not loaded.
func (s *Store) AddPoints(id string, points []point.Point) {
	if len(points) == 0 {
		return
	}

	incoming := make([]point.Point, len(points))
	copy(incoming, points)
	sort.SliceStable(incoming, func(i, j int) bool { return incoming[i].Time < incoming[j].Time })
	incoming = dedupeLastWins(incoming)

	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.series[id]
	if !ok {
		buf = &seriesBuffer{}
		s.series[id] = buf
	}

	covered, hasData := point.Span(buf.points)
	span, _ := point.Span(incoming)
	if !hasData || span.End < covered.Start || span.Start > covered.End {
		buf.points = incoming
	} else {
		buf.points = mergeSorted(buf.points, incoming)
	}

	if s.capacity > 0 && len(buf.points) > s.capacity {
		buf.points = append([]point.Point(nil), buf.points[len(buf.points)-s.capacity:]...)
	}
}

// Reset drops every buffered point, keeping registrations.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, buf := range s.series {
		buf.points = nil
	}
}

// ResetSeries drops the buffered points of one series.
func (s *Store) ResetSeries(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buf, ok := s.series[id]; ok {
		buf.points = nil
	}
}

// Len returns the number of buffered points for id.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pointsLocked(id))
}

// pointsLocked returns the series slice (must hold lock).
func (s *Store) pointsLocked(id string) []point.Point {
	if buf, ok := s.series[id]; ok {
		return buf.points
	}
	return nil
}

// dedupeLastWins collapses equal timestamps in a sorted slice, keeping the last one.
func dedupeLastWins(pts []point.Point) []point.Point {
	out := pts[:0]
	for i, p := range pts {
		if i+1 < len(pts) && pts[i+1].Time == p.Time {
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeSorted merges two sorted slices; b wins on equal timestamps.
func mergeSorted(a, b []point.Point) []point.Point {
	out := make([]point.Point, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Time < b[j].Time:
			out = append(out, a[i])
			i++
		case a[i].Time > b[j].Time:
			out = append(out, b[j])
			j++
		default:
			out = append(out, b[j])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
