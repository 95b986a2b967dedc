// Package reconcile provides the point record: a reconciliation engine that sits
// between an in-memory buffer of points and a persistent backing store.
//
// For every request the record decides which parts can be answered from the
// buffer and which must be fetched from the backing store, merges the two
// without duplicates, writes the merged result back into the buffer and returns
// only the points inside the requested bounds.
//
// # Architecture
//
// The record is composed of three collaborators:
//
// 1. BufferCache: the ordered in-memory store (see core/buffer). It answers
// point, neighbour and range lookups and reports the range it covers.
//
// 2. Adapter: the backing-store driver (see adapters/). It reports its
// Capabilities (read-only, units column, iterative search, singly bound
// queries) and performs raw reads and writes.
//
// 3. Filter: the value filter pipeline applied to every point that comes from
// the adapter before it is admitted to the buffer.
//
// # Range Reconciliation
//
// PointsInRange classifies the query against the buffered range:
//
//   - none: fetch the whole query from the adapter
//   - other_internal: answer from the buffer only
//   - left: fetch [query.Start, cached.Start], buffer supplies the rest
//   - right: buffer supplies [query.Start, cached.End], fetch the rest
//   - other_external: fetch both flanks, buffer supplies the middle
//
// Buffered points win when a timestamp appears in both sources. The span of the
// last successful backing-store query is memoized so repeated requests inside
// it are answered from the buffer without a round trip.
//
// # Degraded Mode
//
// Every operation that touches the backing store goes through a connection gate
// that retries up to Config.MaxConnectAttempts times. When the gate fails, reads
// fall back to the buffer alone and writes are skipped. Adapter errors are
// logged and kept for LastError; they never propagate out of read paths.
//
// # Concurrency
//
// A single mutex per record serializes every operation, including the
// single-point lookups, because all of them mutate the memoized request and the
// buffer.
//
// # Usage Example
//
//	rec, err := reconcile.NewRecord(&reconcile.Spec{
//	    Adapter: adapter,
//	    Buffer:  buffer.New(buffer.Config{}),
//	    Config:  reconcile.DefaultConfig(),
//	    Logger:  logger,
//	})
//
//	ok := rec.RegisterSeries(ctx, "tank_level", "ft")
//	points := rec.PointsInRange(ctx, "tank_level", point.TimeRange{Start: t0, End: t1})
//	p, found := rec.PointBefore(ctx, "tank_level", t1)
package reconcile
