package badgerdb

// Config holds the embedded store settings.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string `mapstructure:"path" default:"data/badger"`
	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool `mapstructure:"in_memory" default:"false"`
	// SyncWrites fsyncs every write.
	SyncWrites bool `mapstructure:"sync_writes" default:"true"`
	// ReadOnly makes the adapter read-only by implementation.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
}
