package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"point-record/core/backend"
	"point-record/core/buffer"
	"point-record/core/database"
	"point-record/core/logger"
	"point-record/core/reconcile"
	"point-record/core/server"
	"point-record/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage used by exports.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the SQL connection of the sql backend.
	Database database.Config `mapstructure:"database"`
	// Backend selects and configures the backing-store adapter.
	Backend backend.Config `mapstructure:"backend"`
	// Record holds the reconciliation tunables.
	Record reconcile.Config `mapstructure:"record"`
	// Buffer holds configuration for the in-memory buffer.
	Buffer buffer.Config `mapstructure:"buffer"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. RECORD_FILTER_MODE -> record.filter_mode)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports the settings that would otherwise only fail on first use.
func (c *Config) Validate() error {
	var errs []error
	if !c.Backend.IsValidDriver() {
		errs = append(errs, fmt.Errorf("backend.driver: unknown driver %q", c.Backend.Driver))
	}
	if _, err := reconcile.ParseFilterMode(c.Record.FilterMode); err != nil {
		errs = append(errs, fmt.Errorf("record.filter_mode: %w", err))
	}
	if _, err := reconcile.ParseFilterCodes(c.Record.FilterCodes); err != nil {
		errs = append(errs, fmt.Errorf("record.filter_codes: %w", err))
	}
	if c.Buffer.Capacity < 0 {
		errs = append(errs, fmt.Errorf("buffer.capacity: must not be negative, got %d", c.Buffer.Capacity))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
