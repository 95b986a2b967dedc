package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"point-record/core/backend"
	"point-record/core/buffer"
	"point-record/core/config"
	"point-record/core/logger"
	"point-record/core/metrics"
	"point-record/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// runtime bundles what every command needs to talk to a point record.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	backend  backend.Backend
	record   *reconcile.Record
}

// bootstrap loads the configuration and assembles the record. The backing
// store is connected lazily by the record itself.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := backend.New(cfg.Backend, cfg.Database, logg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rec, err := reconcile.NewRecord(&reconcile.Spec{
		Adapter: store,
		Buffer:  buffer.New(cfg.Buffer),
		Config:  cfg.Record,
		Logger:  logg.Named("record"),
		Metrics: metrics.New(reg),
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return &runtime{cfg: cfg, logger: logg, registry: reg, backend: store, record: rec}, nil
}

// Close releases the backing store and flushes the logger.
func (rt *runtime) Close() {
	if err := rt.backend.Close(); err != nil {
		rt.logger.Warn("Failed to close backing store", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
