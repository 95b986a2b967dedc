package gormdb

// Config holds the SQL adapter settings.
type Config struct {
	// ReadOnly makes the adapter read-only by implementation.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
	// AutoMigrate creates or updates the series and points tables on Connect.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
	// BatchSize bounds the rows per INSERT statement.
	BatchSize int `mapstructure:"batch_size" default:"500"`
}
