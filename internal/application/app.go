// Package application assembles the ETL from configuration: the object
// store backend, the raw source, the Parquet sink, metrics, and the driver
// and limiter shared by the server and the CLI.
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/metrics"
	"github.com/JonMunkholm/ETL/internal/pipeline"
	"github.com/JonMunkholm/ETL/internal/storage"
	"github.com/JonMunkholm/ETL/internal/storage/s3store"
	"github.com/JonMunkholm/ETL/internal/warehouse"
)

// App is a wired ETL instance.
type App struct {
	Config  *config.Config
	Store   storage.ObjectStore
	Source  *storage.Source
	Sink    *storage.Sink
	Metrics *metrics.Registry
	Limiter *pipeline.RunLimiter
	Driver  *pipeline.Driver
}

// New builds an App from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, store), nil
}

// NewWithStore builds an App over an existing store.
func NewWithStore(cfg *config.Config, store storage.ObjectStore) *App {
	reg := metrics.NewRegistry()
	limiter := pipeline.NewRunLimiter(cfg.Run.MaxConcurrent, cfg.Run.MaxWaitTime)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "etl_active_runs",
		Help: "Runs currently holding a slot.",
	}, func() float64 { return float64(limiter.ActiveCount()) }))

	src := storage.NewSource(store, cfg.Storage.RawPrefix)
	sink := storage.NewSink(store, cfg.Storage.TransformedPrefix, cfg.Storage.PerRun)

	return &App{
		Config:  cfg,
		Store:   store,
		Source:  src,
		Sink:    sink,
		Metrics: reg,
		Limiter: limiter,
		Driver:  pipeline.NewDriver(src, sink, pipeline.WithRecorder(reg)),
	}
}

// OpenStore returns the object store selected by STORAGE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case config.BackendLocal:
		return storage.NewLocalStore(cfg.Storage.LocalDir), nil
	case config.BackendS3:
		store, err := s3store.New(ctx, cfg.AWS, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// LoadSource locates the objects a run wrote, for warehouse COPY. runID
// only matters when SINK_PER_RUN is set.
func (a *App) LoadSource(runID string) warehouse.LoadSource {
	return warehouse.LoadSource{
		Bucket:  a.Config.Storage.Bucket,
		Prefix:  a.Config.Storage.SinkPrefix(runID),
		IAMRole: a.Config.Warehouse.IAMRole,
	}
}
