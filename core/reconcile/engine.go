package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"point-record/core/metrics"
	"point-record/core/point"

	"go.uber.org/zap"
)

// Record reconciles one buffer cache with one backing-store adapter.
// All exported methods are safe for concurrent use; they are serialized by a
// single mutex.
type Record struct {
	mu sync.Mutex

	adapter Adapter
	buffer  BufferCache
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	readOnly bool
	filter   Filter
	last     lastRequest
	ids      *identifierCache
	lastErr  error
}

// NewRecord creates a record from spec.
func NewRecord(spec *Spec) (*Record, error) {
	if spec == nil || spec.Adapter == nil {
		return nil, errors.New("reconcile: adapter is required")
	}
	if spec.Buffer == nil {
		return nil, errors.New("reconcile: buffer is required")
	}

	cfg := spec.Config.withDefaults()

	mode, err := ParseFilterMode(cfg.FilterMode)
	if err != nil {
		return nil, err
	}
	codes, err := ParseFilterCodes(cfg.FilterCodes)
	if err != nil {
		return nil, err
	}

	r := &Record{
		adapter: spec.Adapter,
		buffer:  spec.Buffer,
		cfg:     cfg,
		logger:  spec.Logger,
		metrics: spec.Metrics,
		now:     spec.Clock,
		filter:  NewFilter(mode, codes...),
		ids:     newIdentifierCache(cfg.identifierTTL()),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if !spec.Adapter.Capabilities().ImplementationReadonly {
		r.readOnly = cfg.ReadOnly
	}
	if !spec.Adapter.IsConnected() {
		r.lastErr = ErrNotConnected
	}
	return r, nil
}

// IsConnected reports whether the adapter is currently connected.
func (r *Record) IsConnected() bool {
	return r.adapter.IsConnected()
}

// Capabilities returns the adapter's capability set.
func (r *Record) Capabilities() Capabilities {
	return r.adapter.Capabilities()
}

// LastError returns the most recent absorbed failure, or nil.
func (r *Record) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Status returns a snapshot of the record state.
func (r *Record) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Connected:    r.adapter.IsConnected(),
		ReadOnly:     r.isReadOnly(),
		FilterMode:   r.filter.Mode,
		FilterCodes:  r.filter.SortedCodes(),
		Capabilities: r.adapter.Capabilities(),
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

// IsReadOnly reports whether writes are refused. The adapter's own read-only
// trait always wins over the configured flag.
func (r *Record) IsReadOnly() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isReadOnly()
}

// SetReadOnly sets the configured read-only flag. Ignored against an adapter
// that is read-only by implementation.
func (r *Record) SetReadOnly(readOnly bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adapter.Capabilities().ImplementationReadonly {
		r.readOnly = false
		return
	}
	r.readOnly = readOnly
}

func (r *Record) isReadOnly() bool {
	return r.adapter.Capabilities().ImplementationReadonly || r.readOnly
}

// ensureConnected is the connection gate (must hold lock). It retries up to
// MaxConnectAttempts times and reports the resulting state.
func (r *Record) ensureConnected(ctx context.Context) bool {
	if r.adapter.IsConnected() {
		return true
	}

	for attempt := 1; attempt <= r.cfg.MaxConnectAttempts; attempt++ {
		if err := r.adapter.Connect(ctx); err != nil {
			r.lastErr = fmt.Errorf("%w: %v", ErrNotConnected, err)
			r.logger.Debug("Backing store connection attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if r.adapter.IsConnected() {
			r.lastErr = nil
			return true
		}
		if ctx.Err() != nil {
			break
		}
	}

	if r.lastErr == nil {
		r.lastErr = ErrNotConnected
	}
	r.metrics.ConnectFailed()
	r.logger.Warn("Backing store unreachable, using buffer only",
		zap.Int("attempts", r.cfg.MaxConnectAttempts),
		zap.Error(r.lastErr),
	)
	return false
}

// EnsureConnected runs the connection gate and reports the resulting state.
func (r *Record) EnsureConnected(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureConnected(ctx)
}

// fail records an absorbed adapter failure (must hold lock).
func (r *Record) fail(op string, err error) {
	r.lastErr = fmt.Errorf("%s: %w", op, err)
	r.logger.Warn("Backing store call failed", zap.String("op", op), zap.Error(err))
}

// selectRange fetches and filters a range from the adapter (must hold lock).
func (r *Record) selectRange(ctx context.Context, id string, rng point.TimeRange) ([]point.Point, error) {
	r.metrics.AdapterCall("select_range")
	pts, err := r.adapter.SelectRange(ctx, id, rng)
	if err != nil {
		r.fail("select_range", err)
		return nil, err
	}
	return r.filter.ApplyAll(pts), nil
}

// PointsInRange returns the deduplicated points of id whose time lies within q,
// fetching from the backing store whatever the buffer does not cover.
func (r *Record) PointsInRange(ctx context.Context, id string, q point.TimeRange) []point.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointsInRange(ctx, id, q)
}

// segment is a run of points from one source.
type segment struct {
	points   []point.Point
	buffered bool
}

// pointsInRange implements range reconciliation (must hold lock).
func (r *Record) pointsInRange(ctx context.Context, id string, q point.TimeRange) []point.Point {
	if !q.IsValid() {
		return nil
	}

	if r.last.containsRange(id, q) {
		r.metrics.Classified("memoized")
		return r.buffer.PointsInRange(id, q)
	}

	if !r.ensureConnected(ctx) {
		r.metrics.Classified("offline")
		return r.buffer.PointsInRange(id, q)
	}

	class := point.IntersectNone
	cached, hasCache := r.buffer.CoveredRange(id)
	if hasCache {
		class = cached.Intersection(q)
	}
	r.metrics.Classified(class.String())

	fetched := true
	fetch := func(rng point.TimeRange) segment {
		pts, err := r.selectRange(ctx, id, rng)
		if err != nil {
			fetched = false
		}
		return segment{points: pts}
	}
	buffered := func(rng point.TimeRange) segment {
		return segment{points: r.buffer.PointsInRange(id, rng), buffered: true}
	}

	var left, middle, right segment
	switch class {
	case point.IntersectOtherInternal:
		return r.buffer.PointsInRange(id, q)
	case point.IntersectLeft:
		middle = fetch(point.TimeRange{Start: q.Start, End: cached.Start})
		right = buffered(point.TimeRange{Start: cached.Start, End: q.End})
	case point.IntersectRight:
		left = buffered(point.TimeRange{Start: q.Start, End: cached.End})
		middle = fetch(point.TimeRange{Start: cached.End, End: q.End})
	case point.IntersectOtherExternal:
		left = fetch(point.TimeRange{Start: q.Start, End: cached.Start})
		middle = buffered(cached)
		right = fetch(point.TimeRange{Start: cached.End, End: q.End})
	default:
		middle = fetch(q)
	}

	merged := mergeSegments(q, left, middle, right)

	r.buffer.AddPoints(id, merged)
	if len(merged) > 0 && fetched && r.retained(id, merged) {
		r.last = memoRequest(id, q)
	} else {
		r.last = emptyRequest(id)
	}

	r.logger.Debug("Range reconciled",
		zap.String("id", id),
		zap.Stringer("range", q),
		zap.Stringer("class", class),
		zap.Int("points", len(merged)),
	)
	return merged
}

// mergeSegments concatenates segments, restricts them to q and removes duplicate
// timestamps. A buffered point replaces an adapter point at the same time.
func mergeSegments(q point.TimeRange, segments ...segment) []point.Point {
	total := 0
	for _, s := range segments {
		total += len(s.points)
	}

	type slot struct {
		pos      int
		buffered bool
	}
	seen := make(map[int64]slot, total)
	out := make([]point.Point, 0, total)

	for _, s := range segments {
		for _, p := range s.points {
			if !q.Contains(p.Time) {
				continue
			}
			if prev, dup := seen[p.Time]; dup {
				if s.buffered && !prev.buffered {
					out[prev.pos] = p
					seen[p.Time] = slot{pos: prev.pos, buffered: true}
				}
				continue
			}
			seen[p.Time] = slot{pos: len(out), buffered: s.buffered}
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
