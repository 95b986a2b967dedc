package buffer

// Config holds configuration for the in-memory buffer.
type Config struct {
	// Capacity is the maximum number of points kept per series (0 = unbounded).
	// When exceeded, the oldest points are dropped.
	Capacity int `mapstructure:"capacity" default:"0"`
}
