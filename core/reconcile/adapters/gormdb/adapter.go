package gormdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"point-record/core/database"
	"point-record/core/point"
	"point-record/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Adapter implements reconcile.Adapter over a SQL database.
type Adapter struct {
	cfg    Config
	open   func() (*gorm.DB, error)
	logger *zap.Logger

	mu          sync.Mutex
	db          *gorm.DB
	tx          *gorm.DB
	connected   bool
	unitsColumn bool
}

var _ reconcile.Adapter = (*Adapter)(nil)

// New creates an adapter that connects with dbCfg on the first Connect call.
func New(dbCfg database.Config, cfg Config, logger *zap.Logger) *Adapter {
	a := NewWithDB(nil, cfg, logger)
	a.open = func() (*gorm.DB, error) { return database.Connect(dbCfg) }
	return a
}

// NewWithDB creates an adapter over an already opened connection.
func NewWithDB(db *gorm.DB, cfg Config, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Adapter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		open:   func() (*gorm.DB, error) { return nil, errors.New("no database configured") },
	}
}

// Connect opens the database if needed, migrates the schema and detects the
// units column.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db == nil {
		db, err := a.open()
		if err != nil {
			a.connected = false
			return err
		}
		a.db = db
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		a.connected = false
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		a.connected = false
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if a.cfg.AutoMigrate && !a.cfg.ReadOnly {
		if err := a.db.WithContext(ctx).AutoMigrate(&SeriesRow{}, &PointRow{}); err != nil {
			a.connected = false
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	units, err := database.HasColumn(a.db.WithContext(ctx), SeriesRow{}.TableName(), "units")
	if err != nil {
		a.connected = false
		return err
	}
	a.unitsColumn = units
	a.connected = true

	a.logger.Debug("SQL backing store connected",
		zap.String("dialect", a.db.Dialector.Name()),
		zap.Bool("units_column", units),
	)
	return nil
}

// IsConnected reports the state of the last Connect or failed call.
func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// Capabilities reports the adapter traits.
func (a *Adapter) Capabilities() reconcile.Capabilities {
	a.mu.Lock()
	defer a.mu.Unlock()
	return reconcile.Capabilities{
		ImplementationReadonly:   a.cfg.ReadOnly,
		SupportsUnitsColumn:      a.unitsColumn,
		CanAssignUnits:           a.unitsColumn && !a.cfg.ReadOnly,
		SearchIteratively:        false,
		SupportsSinglyBoundQuery: true,
	}
}

// conn returns the active transaction or the database (must hold lock).
func (a *Adapter) conn(ctx context.Context) (*gorm.DB, error) {
	if !a.connected || a.db == nil {
		return nil, reconcile.ErrNotConnected
	}
	if a.tx != nil {
		return a.tx.WithContext(ctx), nil
	}
	return a.db.WithContext(ctx), nil
}

// check marks the adapter disconnected when err came with a dead connection
// (must hold lock).
func (a *Adapter) check(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := a.db.DB(); dbErr == nil {
		if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
			a.connected = false
			a.tx = nil
		}
	}
	return err
}

// SelectRange returns the points of id within r in ascending time order.
func (a *Adapter) SelectRange(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []PointRow
	err = db.Where("series = ? AND ts >= ? AND ts <= ?", id, r.Start, r.End).
		Order("ts asc").
		Find(&rows).Error
	if err != nil {
		return nil, a.check(ctx, fmt.Errorf("failed to select range of %s: %w", id, err))
	}

	out := make([]point.Point, len(rows))
	for i, row := range rows {
		out[i] = row.toPoint()
	}
	return out, nil
}

// SelectPrevious returns the latest point of id strictly before t.
func (a *Adapter) SelectPrevious(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	return a.selectOne(ctx, id, "ts < ?", "ts desc", t)
}

// SelectNext returns the earliest point of id strictly after t.
func (a *Adapter) SelectNext(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	return a.selectOne(ctx, id, "ts > ?", "ts asc", t)
}

func (a *Adapter) selectOne(ctx context.Context, id, cond, order string, t int64) (point.Point, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return point.Point{}, false, err
	}

	var rows []PointRow
	err = db.Where("series = ?", id).
		Where(cond, t).
		Order(order).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return point.Point{}, false, a.check(ctx, fmt.Errorf("failed to select neighbour of %s: %w", id, err))
	}
	if len(rows) == 0 {
		return point.Point{}, false, nil
	}
	return rows[0].toPoint(), true, nil
}

// InsertSingle upserts one point.
func (a *Adapter) InsertSingle(ctx context.Context, id string, p point.Point) error {
	return a.InsertRange(ctx, id, []point.Point{p})
}

// InsertRange upserts points; an existing row at the same time is overwritten.
func (a *Adapter) InsertRange(ctx context.Context, id string, points []point.Point) error {
	if len(points) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return err
	}

	rows := make([]PointRow, len(points))
	for i, p := range points {
		rows[i] = toRow(id, p)
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "series"}, {Name: "ts"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "quality", "confidence"}),
	}).CreateInBatches(rows, a.cfg.BatchSize).Error
	if err != nil {
		return a.check(ctx, fmt.Errorf("failed to insert points of %s: %w", id, err))
	}
	return nil
}

// RemoveRecord deletes the identifier and every point of id.
func (a *Adapter) RemoveRecord(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("series = ?", id).Delete(&PointRow{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", id).Delete(&SeriesRow{}).Error
	})
	if err != nil {
		return a.check(ctx, fmt.Errorf("failed to remove %s: %w", id, err))
	}
	return nil
}

// ListIdentifiersAndUnits returns every identifier with its units.
// Without a units column every identifier maps to reconcile.NoUnits.
func (a *Adapter) ListIdentifiersAndUnits(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []SeriesRow
	q := db.Model(&SeriesRow{})
	if !a.unitsColumn {
		q = q.Select("name")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, a.check(ctx, fmt.Errorf("failed to list series: %w", err))
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Units
	}
	return out, nil
}

// InsertIdentifierAndUnits registers id, updating its units when it exists.
func (a *Adapter) InsertIdentifierAndUnits(ctx context.Context, id, units string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	db, err := a.conn(ctx)
	if err != nil {
		return err
	}

	row := SeriesRow{Name: id, Units: units}
	if a.unitsColumn {
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"units"}),
		}).Create(&row).Error
	} else {
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Omit("units").Create(&row).Error
	}
	if err != nil {
		return a.check(ctx, fmt.Errorf("failed to insert series %s: %w", id, err))
	}
	return nil
}

// AssignUnitsToRecord sets the units of an existing identifier.
func (a *Adapter) AssignUnitsToRecord(ctx context.Context, id, units string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.unitsColumn {
		return fmt.Errorf("series table has no units column")
	}
	db, err := a.conn(ctx)
	if err != nil {
		return err
	}

	err = db.Model(&SeriesRow{}).Where("name = ?", id).Update("units", units).Error
	if err != nil {
		return a.check(ctx, fmt.Errorf("failed to assign units to %s: %w", id, err))
	}
	return nil
}

// BeginTransaction opens a transaction used by every call until EndTransaction.
// Nested calls are no-ops.
func (a *Adapter) BeginTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tx != nil {
		return nil
	}
	db, err := a.conn(ctx)
	if err != nil {
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return a.check(ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error))
	}
	a.tx = tx
	return nil
}

// EndTransaction commits the open transaction, if any.
func (a *Adapter) EndTransaction(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tx == nil {
		return nil
	}
	tx := a.tx
	a.tx = nil
	if err := tx.Commit().Error; err != nil {
		return a.check(ctx, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.connected = false
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
