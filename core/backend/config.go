package backend

import (
	"point-record/core/reconcile/adapters/badgerdb"
	"point-record/core/reconcile/adapters/gormdb"
	"point-record/core/reconcile/adapters/influx"
)

const (
	DriverSQL    = "sql"
	DriverBadger = "badger"
	DriverInflux = "influx"
)

// Config selects and configures the backing store.
type Config struct {
	// Driver is the backing store type (sql, badger, influx).
	Driver string `mapstructure:"driver" default:"sql"`
	// ReadOnly forces the selected adapter read-only.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
	// SQL configures the gorm adapter. The connection itself comes from the
	// database section.
	SQL gormdb.Config `mapstructure:"sql"`
	// Badger configures the embedded store.
	Badger badgerdb.Config `mapstructure:"badger"`
	// Influx configures the InfluxDB store.
	Influx influx.Config `mapstructure:"influx"`
}

// IsValidDriver checks if the configured driver is known.
func (c Config) IsValidDriver() bool {
	switch c.Driver {
	case DriverSQL, DriverBadger, DriverInflux:
		return true
	default:
		return false
	}
}
