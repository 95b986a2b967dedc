// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections
// from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, tunes the pool and pings the server.
// SQLite connections are limited to a single open connection so that an
// in-memory database is shared by every query.
//
// # Schema Inspection
//
// GetTableColumns and HasColumn read a table's column definitions. The SQL
// backing-store adapter uses them to detect whether the series table carries
// a units column, which it then reports as a capability.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	ok, err := database.HasColumn(db, "series", "units")
package database
