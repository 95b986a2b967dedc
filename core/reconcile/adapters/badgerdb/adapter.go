package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"point-record/core/point"
	"point-record/core/reconcile"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Adapter implements reconcile.Adapter over BadgerDB.
type Adapter struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	db    *badger.DB
	owned bool
	batch *badger.WriteBatch
}

var _ reconcile.Adapter = (*Adapter)(nil)

// New creates an adapter that opens the database on the first Connect call.
func New(cfg Config, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{cfg: cfg, logger: logger}
}

// NewWithDB creates an adapter over an already opened database. The caller
// keeps ownership of db.
func NewWithDB(db *badger.DB, cfg Config, logger *zap.Logger) *Adapter {
	a := New(cfg, logger)
	a.db = db
	return a
}

// zapLogger adapts zap to badger.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l zapLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l zapLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// Connect opens the database if it is not open.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db != nil && !a.db.IsClosed() {
		return nil
	}

	var opts badger.Options
	if a.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if a.cfg.Path == "" {
			return errors.New("badger path is required for a persistent store")
		}
		if err := os.MkdirAll(a.cfg.Path, 0750); err != nil {
			return fmt.Errorf("create badger directory %s: %w", a.cfg.Path, err)
		}
		opts = badger.DefaultOptions(a.cfg.Path)
	}
	opts = opts.
		WithSyncWrites(a.cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(zapLogger{s: a.logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}
	a.db = db
	a.owned = true
	a.logger.Debug("Badger backing store opened",
		zap.String("path", a.cfg.Path),
		zap.Bool("in_memory", a.cfg.InMemory),
	)
	return nil
}

// IsConnected reports whether the database is open.
func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db != nil && !a.db.IsClosed()
}

// Capabilities reports the adapter traits.
func (a *Adapter) Capabilities() reconcile.Capabilities {
	return reconcile.Capabilities{
		ImplementationReadonly:   a.cfg.ReadOnly,
		SupportsUnitsColumn:      true,
		CanAssignUnits:           !a.cfg.ReadOnly,
		SearchIteratively:        false,
		SupportsSinglyBoundQuery: true,
	}
}

// open returns the database or ErrNotConnected (must hold lock).
func (a *Adapter) open() (*badger.DB, error) {
	if a.db == nil || a.db.IsClosed() {
		return nil, reconcile.ErrNotConnected
	}
	return a.db, nil
}

// SelectRange returns the points of id within r in ascending time order.
func (a *Adapter) SelectRange(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return nil, err
	}

	var out []point.Point
	prefix := pointPrefix(id)
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(pointKey(id, r.Start)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if keyTime(item.Key()) > r.End {
				break
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			p, err := decodePoint(item.KeyCopy(nil), val)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select range of %s: %w", id, err)
	}
	return out, nil
}

// SelectPrevious returns the latest point of id strictly before t.
func (a *Adapter) SelectPrevious(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	if t == math.MinInt64 {
		return point.Point{}, false, nil
	}
	return a.seekOne(id, pointKey(id, t-1), true)
}

// SelectNext returns the earliest point of id strictly after t.
func (a *Adapter) SelectNext(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	if t == math.MaxInt64 {
		return point.Point{}, false, nil
	}
	return a.seekOne(id, pointKey(id, t+1), false)
}

// seekOne returns the first point found seeking from key in the given direction.
// A reverse seek lands on the largest key <= key.
func (a *Adapter) seekOne(id string, key []byte, reverse bool) (point.Point, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return point.Point{}, false, err
	}

	var (
		found bool
		p     point.Point
	)
	prefix := pointPrefix(id)
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = reverse
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(key)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		p, err = decodePoint(item.KeyCopy(nil), val)
		found = err == nil
		return err
	})
	if err != nil {
		return point.Point{}, false, fmt.Errorf("select neighbour of %s: %w", id, err)
	}
	return p, found, nil
}

// InsertSingle writes one point, overwriting any point at the same time.
func (a *Adapter) InsertSingle(ctx context.Context, id string, p point.Point) error {
	return a.InsertRange(ctx, id, []point.Point{p})
}

// InsertRange writes points, overwriting any point at the same time.
func (a *Adapter) InsertRange(ctx context.Context, id string, points []point.Point) error {
	if len(points) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return err
	}

	if a.batch != nil {
		for _, p := range points {
			if err := a.batch.Set(pointKey(id, p.Time), encodeValue(p)); err != nil {
				a.batch.Cancel()
				a.batch = nil
				return fmt.Errorf("batch points of %s: %w", id, err)
			}
		}
		return nil
	}

	wb := db.NewWriteBatch()
	for _, p := range points {
		if err := wb.Set(pointKey(id, p.Time), encodeValue(p)); err != nil {
			wb.Cancel()
			return fmt.Errorf("write points of %s: %w", id, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("write points of %s: %w", id, err)
	}
	return nil
}

// RemoveRecord deletes the registration and every point of id.
func (a *Adapter) RemoveRecord(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return err
	}

	var keys [][]byte
	prefix := pointPrefix(id)
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan points of %s: %w", id, err)
	}

	wb := db.NewWriteBatch()
	for _, k := range append(keys, seriesKey(id)) {
		if err := wb.Delete(k); err != nil {
			wb.Cancel()
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// ListIdentifiersAndUnits returns every registered identifier with its units.
func (a *Adapter) ListIdentifiersAndUnits(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	prefix := seriesPrefix()
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.Key()[len(prefix):])] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return out, nil
}

// InsertIdentifierAndUnits registers id with units.
func (a *Adapter) InsertIdentifierAndUnits(ctx context.Context, id, units string) error {
	return a.setUnits(id, units)
}

// AssignUnitsToRecord sets the units of id.
func (a *Adapter) AssignUnitsToRecord(ctx context.Context, id, units string) error {
	return a.setUnits(id, units)
}

func (a *Adapter) setUnits(id, units string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.open()
	if err != nil {
		return err
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set(seriesKey(id), []byte(units))
	})
	if err != nil {
		return fmt.Errorf("set units of %s: %w", id, err)
	}
	return nil
}

// BeginTransaction starts buffering point writes into a write batch.
func (a *Adapter) BeginTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.batch != nil {
		return nil
	}
	db, err := a.open()
	if err != nil {
		return err
	}
	a.batch = db.NewWriteBatch()
	return nil
}

// EndTransaction flushes the write batch, if any.
func (a *Adapter) EndTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.batch == nil {
		return nil
	}
	wb := a.batch
	a.batch = nil
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush write batch: %w", err)
	}
	return nil
}

// Close closes a database opened by Connect.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.batch != nil {
		a.batch.Cancel()
		a.batch = nil
	}
	if a.db == nil || !a.owned {
		return nil
	}
	return a.db.Close()
}
