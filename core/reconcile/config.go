package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"point-record/core/point"
)

// Config holds the tunables of a point record.
type Config struct {
	// MaxConnectAttempts is the retry ceiling of the connection gate.
	MaxConnectAttempts int `mapstructure:"max_connect_attempts" default:"5"`
	// PointMarginSeconds pads single-point queries on both sides.
	PointMarginSeconds int64 `mapstructure:"point_margin_seconds" default:"43200"`
	// SearchStrideSeconds is the window width of iterative neighbour search.
	SearchStrideSeconds int64 `mapstructure:"search_stride_seconds" default:"10800"`
	// SearchMaxIterations bounds the number of windows probed by iterative search.
	SearchMaxIterations int `mapstructure:"search_max_iterations" default:"8"`
	// IdentifierTTLSeconds is how long the identifier/units listing is reused.
	IdentifierTTLSeconds int `mapstructure:"identifier_ttl_seconds" default:"5"`
	// ReadOnly makes the record refuse writes. The adapter may force it on.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
	// FilterMode selects the value filter (passthrough, whitelist, blacklist,
	// codes_to_values, codes_to_confidence).
	FilterMode string `mapstructure:"filter_mode" default:"passthrough"`
	// FilterCodes is a comma separated list of quality codes for the filter.
	FilterCodes string `mapstructure:"filter_codes" default:""`
}

// DefaultConfig returns the default record configuration.
func DefaultConfig() Config {
	return Config{
		MaxConnectAttempts:   5,
		PointMarginSeconds:   12 * 60 * 60,
		SearchStrideSeconds:  3 * 60 * 60,
		SearchMaxIterations:  8,
		IdentifierTTLSeconds: 5,
		FilterMode:           string(FilterPassThrough),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConnectAttempts <= 0 {
		c.MaxConnectAttempts = d.MaxConnectAttempts
	}
	if c.PointMarginSeconds <= 0 {
		c.PointMarginSeconds = d.PointMarginSeconds
	}
	if c.SearchStrideSeconds <= 0 {
		c.SearchStrideSeconds = d.SearchStrideSeconds
	}
	if c.SearchMaxIterations <= 0 {
		c.SearchMaxIterations = d.SearchMaxIterations
	}
	if c.IdentifierTTLSeconds <= 0 {
		c.IdentifierTTLSeconds = d.IdentifierTTLSeconds
	}
	if c.FilterMode == "" {
		c.FilterMode = d.FilterMode
	}
	return c
}

func (c Config) identifierTTL() time.Duration {
	return time.Duration(c.IdentifierTTLSeconds) * time.Second
}

// ParseFilterCodes parses a comma separated list of quality codes.
func ParseFilterCodes(s string) ([]point.Quality, error) {
	var codes []point.Quality
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid quality code %q: %w", field, err)
		}
		codes = append(codes, point.Quality(v))
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, nil
}
