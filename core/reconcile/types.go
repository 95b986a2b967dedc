package reconcile

import (
	"time"

	"point-record/core/metrics"
	"point-record/core/point"

	"go.uber.org/zap"
)

// Spec bundles the collaborators and settings a Record is built from.
type Spec struct {
	// Adapter is the backing-store driver. Required.
	Adapter Adapter

	// Buffer is the in-memory point store. Required.
	Buffer BufferCache

	// Config holds the record tunables. Zero fields take their defaults.
	Config Config

	// Logger receives diagnostics. If nil, logging is disabled.
	Logger *zap.Logger

	// Metrics receives counters. May be nil.
	Metrics *metrics.Metrics

	// Clock overrides time.Now for the identifier TTL. May be nil.
	Clock func() time.Time
}

// Status is a snapshot of a record's state for diagnostics.
type Status struct {
	Connected    bool            `json:"connected"`
	ReadOnly     bool            `json:"read_only"`
	FilterMode   FilterMode      `json:"filter_mode"`
	FilterCodes  []point.Quality `json:"filter_codes"`
	Capabilities Capabilities    `json:"capabilities"`
	LastError    string          `json:"last_error,omitempty"`
}
