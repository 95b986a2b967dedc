package influx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"point-record/core/point"
	"point-record/core/reconcile"
	"point-record/core/utils"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

// Deleter is the subset of api.DeleteAPI the adapter uses.
type Deleter interface {
	DeleteWithName(ctx context.Context, orgName, bucketName string, start, stop time.Time, predicate string) error
}

// Adapter implements reconcile.Adapter over InfluxDB.
type Adapter struct {
	cfg    Config
	logger *zap.Logger

	client influxdb2.Client
	query  api.QueryAPI
	write  api.WriteAPIBlocking
	delete Deleter
	ping   func(ctx context.Context) (bool, error)

	mu        sync.Mutex
	connected bool
	bulk      bool
	pending   []*write.Point
}

var _ reconcile.Adapter = (*Adapter)(nil)

// New creates an adapter with its own client.
func New(cfg Config, logger *zap.Logger) *Adapter {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	a := NewWithAPIs(cfg, client.QueryAPI(cfg.Org), client.WriteAPIBlocking(cfg.Org, cfg.Bucket), client.DeleteAPI(), client.Ping, logger)
	a.client = client
	return a
}

// NewWithAPIs creates an adapter over explicit client APIs.
func NewWithAPIs(cfg Config, q api.QueryAPI, w api.WriteAPIBlocking, d Deleter, ping func(ctx context.Context) (bool, error), logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:    cfg,
		logger: logger,
		query:  q,
		write:  w,
		delete: d,
		ping:   ping,
	}
}

// Connect pings the server.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ok, err := a.ping(ctx)
	if err != nil {
		a.connected = false
		return fmt.Errorf("ping influxdb: %w", err)
	}
	if !ok {
		a.connected = false
		return errors.New("influxdb is not ready")
	}
	a.connected = true
	return nil
}

// IsConnected reports the state of the last ping.
func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// Capabilities reports the adapter traits.
func (a *Adapter) Capabilities() reconcile.Capabilities {
	return reconcile.Capabilities{
		ImplementationReadonly:   a.cfg.ReadOnly,
		SupportsUnitsColumn:      false,
		CanAssignUnits:           false,
		SearchIteratively:        true,
		SupportsSinglyBoundQuery: false,
	}
}

// check marks the adapter disconnected when the server stopped answering
// (must hold lock).
func (a *Adapter) check(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ok, pingErr := a.ping(ctx); pingErr != nil || !ok {
		a.connected = false
	}
	return err
}

func (a *Adapter) ready() error {
	if !a.connected {
		return reconcile.ErrNotConnected
	}
	return nil
}

// SelectRange returns the points of id within r in ascending time order.
func (a *Adapter) SelectRange(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ready(); err != nil {
		return nil, err
	}

	result, err := a.query.Query(ctx, rangeQuery(a.cfg, id, r))
	if err != nil {
		return nil, a.check(ctx, fmt.Errorf("query range of %s: %w", id, err))
	}
	// the client returns a nil result for an empty response
	if result == nil {
		return nil, nil
	}
	defer result.Close()

	var out []point.Point
	for result.Next() {
		out = append(out, recordToPoint(result.Record()))
	}
	if result.Err() != nil {
		return nil, a.check(ctx, fmt.Errorf("read range of %s: %w", id, result.Err()))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

// recordToPoint converts a pivoted flux record.
func recordToPoint(rec *query.FluxRecord) point.Point {
	return point.Point{
		Time:       rec.Time().Unix(),
		Value:      utils.ToFloat64(rec.ValueByKey("value")),
		Quality:    point.Quality(utils.ToInt64(rec.ValueByKey("quality"))),
		Confidence: utils.ToFloat64(rec.ValueByKey("confidence")),
	}
}

// SelectPrevious is not supported; the record searches iteratively.
func (a *Adapter) SelectPrevious(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	return point.Point{}, false, nil
}

// SelectNext is not supported; the record searches iteratively.
func (a *Adapter) SelectNext(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	return point.Point{}, false, nil
}

func (a *Adapter) newPoint(id string, p point.Point) *write.Point {
	return influxdb2.NewPoint(
		a.cfg.Measurement,
		map[string]string{"series": id},
		map[string]interface{}{
			"value":      p.Value,
			"quality":    int64(p.Quality),
			"confidence": p.Confidence,
		},
		time.Unix(p.Time, 0),
	)
}

// InsertSingle writes one point.
func (a *Adapter) InsertSingle(ctx context.Context, id string, p point.Point) error {
	return a.InsertRange(ctx, id, []point.Point{p})
}

// InsertRange writes points. Inside a bulk operation they are held until
// EndTransaction.
func (a *Adapter) InsertRange(ctx context.Context, id string, points []point.Point) error {
	if len(points) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ready(); err != nil {
		return err
	}

	pts := make([]*write.Point, len(points))
	for i, p := range points {
		pts[i] = a.newPoint(id, p)
	}
	if a.bulk {
		a.pending = append(a.pending, pts...)
		return nil
	}
	if err := a.write.WritePoint(ctx, pts...); err != nil {
		return a.check(ctx, fmt.Errorf("write points of %s: %w", id, err))
	}
	return nil
}

// RemoveRecord deletes every point and the registration of id.
func (a *Adapter) RemoveRecord(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ready(); err != nil {
		return err
	}

	start := time.Unix(minSeconds, 0)
	stop := time.Unix(maxSeconds, 0)
	for _, m := range []string{a.cfg.Measurement, a.cfg.registry()} {
		err := a.delete.DeleteWithName(ctx, a.cfg.Org, a.cfg.Bucket, start, stop, deletePredicate(m, id))
		if err != nil {
			return a.check(ctx, fmt.Errorf("delete %s from %s: %w", id, m, err))
		}
	}
	return nil
}

// ListIdentifiersAndUnits returns every series tag value. Units are always
// reconcile.NoUnits.
func (a *Adapter) ListIdentifiersAndUnits(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ready(); err != nil {
		return nil, err
	}

	result, err := a.query.Query(ctx, identifiersQuery(a.cfg))
	if err != nil {
		return nil, a.check(ctx, fmt.Errorf("list series: %w", err))
	}
	out := make(map[string]string)
	if result == nil {
		return out, nil
	}
	defer result.Close()

	for result.Next() {
		if name := utils.ToString(result.Record().Value()); name != "" {
			out[name] = reconcile.NoUnits
		}
	}
	if result.Err() != nil {
		return nil, a.check(ctx, fmt.Errorf("read series list: %w", result.Err()))
	}
	return out, nil
}

// InsertIdentifierAndUnits writes a registration marker for id.
func (a *Adapter) InsertIdentifierAndUnits(ctx context.Context, id, units string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ready(); err != nil {
		return err
	}

	marker := influxdb2.NewPoint(
		a.cfg.registry(),
		map[string]string{"series": id},
		map[string]interface{}{"units": units},
		time.Unix(0, 0),
	)
	if err := a.write.WritePoint(ctx, marker); err != nil {
		return a.check(ctx, fmt.Errorf("register %s: %w", id, err))
	}
	return nil
}

// AssignUnitsToRecord is not supported without a units column.
func (a *Adapter) AssignUnitsToRecord(ctx context.Context, id, units string) error {
	return errors.New("influx store has no units column")
}

// BeginTransaction starts holding point writes.
func (a *Adapter) BeginTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.bulk = true
	return nil
}

// EndTransaction writes the held points in one request.
func (a *Adapter) EndTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	pending := a.pending
	a.bulk = false
	a.pending = nil
	if len(pending) == 0 {
		return nil
	}
	if err := a.ready(); err != nil {
		return err
	}
	if err := a.write.WritePoint(ctx, pending...); err != nil {
		return a.check(ctx, fmt.Errorf("flush %d points: %w", len(pending), err))
	}
	return nil
}

// Close releases the client, if the adapter created it.
func (a *Adapter) Close() error {
	if a.client != nil {
		a.client.Close()
	}
	return nil
}
