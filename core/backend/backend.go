package backend

import (
	"fmt"

	"point-record/core/database"
	"point-record/core/reconcile"
	"point-record/core/reconcile/adapters/badgerdb"
	"point-record/core/reconcile/adapters/gormdb"
	"point-record/core/reconcile/adapters/influx"

	"go.uber.org/zap"
)

// Backend is a reconcile.Adapter that holds resources until closed.
type Backend interface {
	reconcile.Adapter
	Close() error
}

// New creates the adapter selected by cfg.Driver. The adapter is not
// connected; the record's connection gate does that on first use.
func New(cfg Config, dbCfg database.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := logger.With(zap.String("backend", cfg.Driver))

	switch cfg.Driver {
	case DriverSQL:
		sqlCfg := cfg.SQL
		sqlCfg.ReadOnly = sqlCfg.ReadOnly || cfg.ReadOnly
		return gormdb.New(dbCfg, sqlCfg, l), nil
	case DriverBadger:
		badgerCfg := cfg.Badger
		badgerCfg.ReadOnly = badgerCfg.ReadOnly || cfg.ReadOnly
		return badgerdb.New(badgerCfg, l), nil
	case DriverInflux:
		influxCfg := cfg.Influx
		influxCfg.ReadOnly = influxCfg.ReadOnly || cfg.ReadOnly
		return influx.New(influxCfg, l), nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}
