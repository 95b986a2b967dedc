package storage

import "strings"

// Config holds configuration for the object storage used by exports.
type Config struct {
	// Endpoint is the host[:port] of the S3 compatible service. A scheme is
	// accepted and stripped; https:// turns TLS on.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL forces TLS.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the exports. It is created on first use.
	Bucket string `mapstructure:"bucket" default:"point-record"`
	// Region of the bucket, used when creating it.
	Region string `mapstructure:"region" default:""`
	// Prefix is the root of every export object name.
	Prefix string `mapstructure:"prefix" default:"exports"`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// ExportPrefix returns Prefix without surrounding slashes, "exports" when unset.
func (c Config) ExportPrefix() string {
	if p := strings.Trim(c.Prefix, "/"); p != "" {
		return p
	}
	return "exports"
}
