package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"aquacore/internal/blob"
	"aquacore/internal/catalog"
	"aquacore/internal/core"
	"aquacore/internal/logging"
	"aquacore/plugins/freshwater"
)

// openStore selects the persistence backend from the configuration. Unknown
// drivers are rejected here so serve fails before binding the listener.
func openStore(cfg Config, engine *core.RulesEngine) (core.PersistentStore, error) {
	switch core.StorageDriver(cfg.Persistence.Driver) {
	case core.StorageMemory, "":
		return core.NewMemoryStore(engine), nil
	case core.StorageSQLite:
		return core.NewSQLiteStore(cfg.Persistence.SQLitePath, engine)
	case core.StoragePostgres:
		return core.NewPostgresStore(cfg.Persistence.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}
}

// openBlob selects the report artifact store from the configuration.
func openBlob(ctx context.Context, cfg Config) (blob.Store, error) {
	switch blob.Driver(cfg.Blob.Driver) {
	case blob.DriverFilesystem, "":
		return blob.NewFilesystem(cfg.Blob.FSRoot)
	case blob.DriverS3:
		return blob.OpenS3FromEnv(ctx)
	case blob.DriverMemory:
		return blob.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

func stockingPolicy(cfg Config) core.StockingConfig {
	return core.StockingConfig{
		SchoolSize:   cfg.Stocking.SchoolSize,
		MaxQuantity:  cfg.Stocking.MaxQuantity,
		LowStockDays: cfg.Stocking.LowStockDays,
		CriticalDays: cfg.Stocking.CriticalDays,
	}
}

// newService assembles the evaluation service: default rules engine, the
// configured store, prometheus metrics on a fresh registry, the stocking
// policy, the bundled freshwater plugin, and the species-pack catalog as an
// extra resolution source.
func newService(cfg Config, log *logging.Logger, packs *catalog.Catalog) (*core.Service, *prometheus.Registry, error) {
	engine := core.NewDefaultRulesEngine()
	store, err := openStore(cfg, engine)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []core.ServiceOption{
		core.WithLogger(log.Named("service")),
		core.WithMetricsRecorder(metrics),
		core.WithStockingConfig(stockingPolicy(cfg)),
	}
	if packs != nil {
		opts = append(opts, core.WithSpeciesSource(packs))
	}
	svc := core.NewService(store, opts...)
	if _, err := svc.InstallPlugin(freshwater.New()); err != nil {
		return nil, nil, fmt.Errorf("install freshwater plugin: %w", err)
	}
	return svc, registry, nil
}

// loadPacksInto loads every pack under dir and swaps the combined records
// into the catalog, returning the species count.
func loadPacksInto(c *catalog.Catalog, dir string) (int, error) {
	packs, err := catalog.LoadPackDir(dir)
	if err != nil {
		return 0, err
	}
	var records []core.Species
	for _, pack := range packs {
		records = append(records, pack.SpeciesRecords()...)
	}
	c.ReplaceAll(records)
	return len(records), nil
}
