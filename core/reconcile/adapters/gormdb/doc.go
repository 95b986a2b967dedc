// Package gormdb implements reconcile.Adapter on top of GORM.
//
// Series identifiers live in the "series" table and points in the "points"
// table keyed by (series, ts). Both MySQL and SQLite are supported through
// core/database.
//
// The units column is optional: older schemas without it are detected on
// Connect through the schema inspector, and the adapter then reports
// SupportsUnitsColumn=false so the record treats every listed name as a match.
//
// # Usage
//
//	a := gormdb.New(cfg.Database, gormdb.Config{AutoMigrate: true}, log)
//	rec, err := reconcile.NewRecord(&reconcile.Spec{Adapter: a, Buffer: buf})
package gormdb
