package reconcile

import (
	"context"

	"point-record/core/point"
)

// Capabilities describes the traits of a backing store. It is fixed for the
// lifetime of a connection and drives every branch of the reconcile algorithms.
type Capabilities struct {
	// ImplementationReadonly means the backend cannot be written to at all.
	ImplementationReadonly bool `json:"implementation_readonly"`

	// SupportsUnitsColumn means the backend persists units per identifier.
	SupportsUnitsColumn bool `json:"supports_units_column"`

	// CanAssignUnits means units may be set on an identifier that has none.
	CanAssignUnits bool `json:"can_assign_units"`

	// SearchIteratively means neighbour lookups should probe bounded windows
	// instead of issuing unbounded queries.
	SearchIteratively bool `json:"search_iteratively"`

	// SupportsSinglyBoundQuery means SelectPrevious/SelectNext are available.
	SupportsSinglyBoundQuery bool `json:"supports_singly_bound_query"`
}

// Adapter defines the interface for a backing-store driver.
// Each adapter implements connection lifecycle, capability reporting and raw
// data access for one kind of store (SQL, embedded KV, historian).
type Adapter interface {
	// Connect (re)establishes the connection to the backing store.
	Connect(ctx context.Context) error

	// IsConnected reports the current connection state.
	IsConnected() bool

	// Capabilities returns the traits of the connected backend.
	Capabilities() Capabilities

	// SelectRange returns the points of id within r, ordered by time.
	SelectRange(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error)

	// SelectPrevious returns the latest point of id strictly before t.
	// ok is false if there is none.
	SelectPrevious(ctx context.Context, id string, t int64) (p point.Point, ok bool, err error)

	// SelectNext returns the earliest point of id strictly after t.
	// ok is false if there is none.
	SelectNext(ctx context.Context, id string, t int64) (p point.Point, ok bool, err error)

	// InsertSingle persists one point.
	InsertSingle(ctx context.Context, id string, p point.Point) error

	// InsertRange persists a batch of points.
	InsertRange(ctx context.Context, id string, points []point.Point) error

	// RemoveRecord deletes the identifier and all of its points.
	RemoveRecord(ctx context.Context, id string) error

	// ListIdentifiersAndUnits returns every persisted identifier with its units.
	// Backends without a units column report NoUnits for every identifier.
	ListIdentifiersAndUnits(ctx context.Context) (map[string]string, error)

	// InsertIdentifierAndUnits persists a new identifier. Inserting an
	// identifier that already exists is not an error.
	InsertIdentifierAndUnits(ctx context.Context, id, units string) error

	// AssignUnitsToRecord sets the units of an existing identifier.
	AssignUnitsToRecord(ctx context.Context, id, units string) error

	// BeginTransaction opens a bulk-write boundary.
	BeginTransaction(ctx context.Context) error

	// EndTransaction commits the bulk-write boundary opened by BeginTransaction.
	EndTransaction(ctx context.Context) error
}

// BufferCache is the in-memory point store the record fronts the adapter with.
// It has no knowledge of the backing store.
type BufferCache interface {
	PointAt(id string, t int64) (point.Point, bool)
	PointBefore(id string, t int64) (point.Point, bool)
	PointAfter(id string, t int64) (point.Point, bool)
	PointsInRange(id string, r point.TimeRange) []point.Point
	AddPoint(id string, p point.Point)
	AddPoints(id string, points []point.Point)

	// CoveredRange returns the span currently buffered for id.
	CoveredRange(id string) (point.TimeRange, bool)

	Reset()
	ResetSeries(id string)

	// RegisterSeries records the identifier locally. Used alone when the
	// backing store is unreachable.
	RegisterSeries(name, units string) bool
}
