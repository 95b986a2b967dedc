// Package config provides configuration management for the point record service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section and are registered by walking the structs with reflection.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, metrics route)
//   - Database: SQL connection used by the sql backend (sqlite or mysql)
//   - Backend: backing-store driver selection (sql, badger, influx)
//   - Record: reconciliation tunables (retry ceiling, margins, filter)
//   - Buffer: in-memory buffer capacity
//   - Storage: S3/MinIO credentials and bucket for exports
//   - Log: Logging level and format
//
// Nested keys map to upper-case environment variables joined by underscores,
// e.g. record.filter_mode is read from RECORD_FILTER_MODE.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Backend.Driver)
package config
