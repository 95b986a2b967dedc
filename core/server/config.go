package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReadTimeoutSeconds bounds reading one request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `mapstructure:"metrics_enabled" default:"true"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// ReadTimeout returns the request read timeout, 30s when unset.
func (c Config) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
