package gormdb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"point-record/core/buffer"
	"point-record/core/database"
	"point-record/core/point"
	"point-record/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupTestDB creates a named in-memory SQLite DB.
func setupTestDB(t *testing.T, dbName string) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func connectedAdapter(t *testing.T, dbName string) *Adapter {
	t.Helper()
	a := NewWithDB(setupTestDB(t, dbName), Config{AutoMigrate: true}, nil)
	require.NoError(t, a.Connect(context.Background()))
	return a
}

func TestAdapter_ConnectAndCapabilities(t *testing.T) {
	a := connectedAdapter(t, "gormdb_caps")

	assert.True(t, a.IsConnected())
	caps := a.Capabilities()
	assert.True(t, caps.SupportsUnitsColumn)
	assert.True(t, caps.CanAssignUnits)
	assert.True(t, caps.SupportsSinglyBoundQuery)
	assert.False(t, caps.SearchIteratively)
	assert.False(t, caps.ImplementationReadonly)
}

func TestAdapter_NotConnected(t *testing.T) {
	a := New(database.Config{Driver: "oracle"}, Config{}, nil)

	assert.Error(t, a.Connect(context.Background()))
	assert.False(t, a.IsConnected())

	_, err := a.SelectRange(context.Background(), "S", point.TimeRange{Start: 0, End: 1})
	assert.ErrorIs(t, err, reconcile.ErrNotConnected)
}

func TestAdapter_PointsRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := connectedAdapter(t, "gormdb_points")

	require.NoError(t, a.InsertRange(ctx, "S", []point.Point{
		{Time: 10, Value: 1, Quality: point.QualityGood},
		{Time: 20, Value: 2, Quality: point.QualityGood},
		{Time: 30, Value: 3, Quality: point.QualityBad, Confidence: 0.5},
	}))
	require.NoError(t, a.InsertSingle(ctx, "other", point.New(15, 9)))

	pts, err := a.SelectRange(ctx, "S", point.TimeRange{Start: 10, End: 25})
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, int64(10), pts[0].Time)
	assert.Equal(t, int64(20), pts[1].Time)

	// upsert overwrites the existing row
	require.NoError(t, a.InsertSingle(ctx, "S", point.Point{Time: 20, Value: 22, Quality: point.QualityUncertain}))
	pts, err = a.SelectRange(ctx, "S", point.TimeRange{Start: 20, End: 20})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 22.0, pts[0].Value)
	assert.Equal(t, point.QualityUncertain, pts[0].Quality)

	prev, ok, err := a.SelectPrevious(ctx, "S", 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), prev.Time)

	next, ok, err := a.SelectNext(ctx, "S", 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(30), next.Time)
	assert.Equal(t, 0.5, next.Confidence)

	_, ok, err = a.SelectNext(ctx, "S", 30)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdapter_Identifiers(t *testing.T) {
	ctx := context.Background()
	a := connectedAdapter(t, "gormdb_ids")

	require.NoError(t, a.InsertIdentifierAndUnits(ctx, "flow", reconcile.NoUnits))
	require.NoError(t, a.InsertIdentifierAndUnits(ctx, "level", "ft"))
	require.NoError(t, a.AssignUnitsToRecord(ctx, "flow", "gpm"))

	ids, err := a.ListIdentifiersAndUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"flow": "gpm", "level": "ft"}, ids)

	require.NoError(t, a.InsertSingle(ctx, "level", point.New(1, 1)))
	require.NoError(t, a.RemoveRecord(ctx, "level"))

	ids, err = a.ListIdentifiersAndUnits(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "level")

	pts, err := a.SelectRange(ctx, "level", point.TimeRange{Start: 0, End: 10})
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestAdapter_LegacySchemaWithoutUnits(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, "gormdb_legacy")
	require.NoError(t, db.Exec("CREATE TABLE series (name VARCHAR(191) PRIMARY KEY)").Error)
	require.NoError(t, db.Exec(`CREATE TABLE points (
		series VARCHAR(191), ts INTEGER, value REAL, quality INTEGER, confidence REAL,
		PRIMARY KEY (series, ts)
	)`).Error)

	a := NewWithDB(db, Config{AutoMigrate: false}, nil)
	require.NoError(t, a.Connect(ctx))

	caps := a.Capabilities()
	assert.False(t, caps.SupportsUnitsColumn)
	assert.False(t, caps.CanAssignUnits)

	require.NoError(t, a.InsertIdentifierAndUnits(ctx, "flow", "gallons"))
	ids, err := a.ListIdentifiersAndUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"flow": reconcile.NoUnits}, ids)

	assert.Error(t, a.AssignUnitsToRecord(ctx, "flow", "gallons"))
}

func TestAdapter_ReadOnly(t *testing.T) {
	a := NewWithDB(setupTestDB(t, "gormdb_ro"), Config{ReadOnly: true, AutoMigrate: true}, nil)
	require.NoError(t, a.Connect(context.Background()))

	caps := a.Capabilities()
	assert.True(t, caps.ImplementationReadonly)
	assert.False(t, caps.CanAssignUnits)
}

func TestAdapter_Transaction(t *testing.T) {
	ctx := context.Background()
	a := connectedAdapter(t, "gormdb_tx")

	require.NoError(t, a.BeginTransaction(ctx))
	require.NoError(t, a.BeginTransaction(ctx))
	require.NoError(t, a.InsertRange(ctx, "S", []point.Point{point.New(1, 1), point.New(2, 2)}))
	require.NoError(t, a.EndTransaction(ctx))
	require.NoError(t, a.EndTransaction(ctx))

	pts, err := a.SelectRange(ctx, "S", point.TimeRange{Start: 0, End: 10})
	require.NoError(t, err)
	assert.Len(t, pts, 2)
}

func TestAdapter_RecordIntegration(t *testing.T) {
	ctx := context.Background()
	a := connectedAdapter(t, "gormdb_record")
	require.NoError(t, a.InsertRange(ctx, "S", []point.Point{point.New(100, 1), point.New(200, 2), point.New(300, 3)}))

	rec, err := reconcile.NewRecord(&reconcile.Spec{Adapter: a, Buffer: buffer.New(buffer.Config{})})
	require.NoError(t, err)

	assert.True(t, rec.RegisterSeries(ctx, "S", "psi"))
	pts := rec.PointsInRange(ctx, "S", point.TimeRange{Start: 150, End: 300})
	assert.Len(t, pts, 2)

	p, ok := rec.PointBefore(ctx, "S", 100)
	assert.False(t, ok)
	p, ok = rec.PointAfter(ctx, "S", 300)
	assert.False(t, ok)
	p, ok = rec.PointAt(ctx, "S", 100)
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.Value)
}

// mockDB creates a GORM connection over sqlmock with the mysql dialect.
func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestAdapter_MySQLUnitsDetection(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `series`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("name", "varchar(191)", "NO", "PRI", nil, ""),
	)

	a := NewWithDB(db, Config{AutoMigrate: false}, nil)
	require.NoError(t, a.Connect(context.Background()))
	assert.False(t, a.Capabilities().SupportsUnitsColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_DeadConnectionMarksDisconnected(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	// gorm.Open pings once, Connect pings again
	mock.ExpectPing()
	mock.ExpectPing()
	mock.ExpectQuery("SHOW COLUMNS FROM `series`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("name", "varchar(191)", "NO", "PRI", nil, "").
			AddRow("units", "varchar(64)", "NO", "", "", ""),
	)
	mock.ExpectQuery("SELECT \\* FROM `points`").WillReturnError(errors.New("connection reset"))
	mock.ExpectPing().WillReturnError(errors.New("broken pipe"))

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	a := NewWithDB(db, Config{AutoMigrate: false}, nil)
	require.NoError(t, a.Connect(context.Background()))
	assert.True(t, a.Capabilities().SupportsUnitsColumn)

	_, err = a.SelectRange(context.Background(), "S", point.TimeRange{Start: 0, End: 10})
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, a.IsConnected())
	assert.NoError(t, mock.ExpectationsWereMet())
}
