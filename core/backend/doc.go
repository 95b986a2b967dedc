// Package backend builds the backing-store adapter named in the configuration.
//
// # Drivers
//
//   - sql: GORM over MySQL or SQLite (core/database settings)
//   - badger: embedded BadgerDB
//   - influx: InfluxDB 2.x bucket
//
// # Usage
//
//	b, err := backend.New(cfg.Backend, cfg.Database, log)
//	if err != nil {
//	    log.Fatal("Backend setup failed", zap.Error(err))
//	}
//	defer b.Close()
package backend
