package reconcile

import (
	"context"

	"point-record/core/point"

	"go.uber.org/zap"
)

// writable reports whether writes may proceed (must hold lock).
func (r *Record) writable(ctx context.Context) bool {
	return !r.isReadOnly() && r.ensureConnected(ctx)
}

// AddPoint writes p to the buffer and the backing store.
// It reports false when the write was skipped (read-only or disconnected) or
// the store rejected it.
func (r *Record) AddPoint(ctx context.Context, id string, p point.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable(ctx) {
		return false
	}

	r.last.clear()
	r.buffer.AddPoint(id, p)

	r.metrics.AdapterCall("insert_single")
	if err := r.adapter.InsertSingle(ctx, id, p); err != nil {
		r.fail("insert_single", err)
		return false
	}
	return true
}

// AddPoints writes points to the buffer and the backing store.
func (r *Record) AddPoints(ctx context.Context, id string, points []point.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable(ctx) {
		return false
	}
	if len(points) == 0 {
		return true
	}

	r.last.clear()
	r.buffer.AddPoints(id, points)

	r.metrics.AdapterCall("insert_range")
	if err := r.adapter.InsertRange(ctx, id, points); err != nil {
		r.fail("insert_range", err)
		return false
	}
	return true
}

// Reset drops the whole buffer, the memoized request and the identifier listing.
func (r *Record) Reset(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable(ctx) {
		return false
	}
	r.buffer.Reset()
	r.last.clear()
	r.ids.invalidate()
	return true
}

// ResetSeries drops the buffered points of id, the memoized request and the
// identifier listing.
func (r *Record) ResetSeries(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable(ctx) {
		return false
	}
	r.resetSeries(id)
	return true
}

func (r *Record) resetSeries(id string) {
	r.buffer.ResetSeries(id)
	r.last.clear()
	r.ids.invalidate()
}

// Invalidate removes the persisted record of id, then resets it locally.
func (r *Record) Invalidate(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable(ctx) {
		return false
	}

	r.metrics.AdapterCall("remove_record")
	if err := r.adapter.RemoveRecord(ctx, id); err != nil {
		r.fail("remove_record", err)
		return false
	}
	r.ids.forget(id)
	r.resetSeries(id)

	r.logger.Info("Series invalidated", zap.String("id", id))
	return true
}

// BeginBulkOperation opens an adapter transaction boundary.
func (r *Record) BeginBulkOperation(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ensureConnected(ctx) {
		return false
	}
	r.metrics.AdapterCall("begin_transaction")
	if err := r.adapter.BeginTransaction(ctx); err != nil {
		r.fail("begin_transaction", err)
		return false
	}
	return true
}

// EndBulkOperation closes the boundary opened by BeginBulkOperation.
func (r *Record) EndBulkOperation(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ensureConnected(ctx) {
		return false
	}
	r.metrics.AdapterCall("end_transaction")
	if err := r.adapter.EndTransaction(ctx); err != nil {
		r.fail("end_transaction", err)
		return false
	}
	return true
}

// FilterMode returns the active filter mode.
func (r *Record) FilterMode() FilterMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter.Mode
}

// FilterCodes returns the configured quality codes in ascending order.
func (r *Record) FilterCodes() []point.Quality {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter.SortedCodes()
}

// SetFilterMode switches the filter. A change drops every buffered point so
// values computed under the old filter are never returned.
func (r *Record) SetFilterMode(ctx context.Context, mode FilterMode) error {
	mode, err := ParseFilterMode(string(mode))
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.filter.Mode == mode {
		return nil
	}
	r.filter.Mode = mode
	r.filterChanged(ctx)
	return nil
}

// AddFilterCode adds a quality code to the filter set.
func (r *Record) AddFilterCode(ctx context.Context, code point.Quality) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.filter.has(code) {
		return
	}
	r.filter.Codes[code] = struct{}{}
	r.filterChanged(ctx)
}

// RemoveFilterCode removes a quality code from the filter set, if present.
func (r *Record) RemoveFilterCode(ctx context.Context, code point.Quality) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filter.has(code) {
		return
	}
	delete(r.filter.Codes, code)
	r.filterChanged(ctx)
}

// ClearFilterCodes empties the filter set.
func (r *Record) ClearFilterCodes(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filter.Codes = make(map[point.Quality]struct{})
	r.filterChanged(ctx)
}

// filterChanged invalidates everything cached under the previous filter and
// attempts to reconnect (must hold lock).
func (r *Record) filterChanged(ctx context.Context) {
	r.buffer.Reset()
	r.last.clear()
	r.logger.Debug("Filter changed, buffer dropped",
		zap.String("mode", string(r.filter.Mode)),
		zap.Int("codes", len(r.filter.Codes)),
	)
	r.ensureConnected(ctx)
}
