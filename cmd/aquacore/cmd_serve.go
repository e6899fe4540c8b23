package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aquacore/internal/adapters/httpapi"
	"aquacore/internal/adapters/reports"
	"aquacore/internal/catalog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aquacore HTTP API",
	Long: `Starts the HTTP server: stocking evaluation, reference-data CRUD,
asynchronous report exports, health, and prometheus metrics.

With --pack-dir the species packs in that directory join the evaluation
catalog; --watch keeps them hot-reloaded on file changes. Shuts down
gracefully on SIGINT and SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	packs := catalog.New()
	svc, registry, err := newService(cfg, logger, packs)
	if err != nil {
		return err
	}

	if cfg.Catalog.PackDir != "" {
		if cfg.Catalog.Watch {
			watcher, err := catalog.NewWatcher(packs, cfg.Catalog.PackDir, logger.Named("catalog"))
			if err != nil {
				return fmt.Errorf("watch species packs: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()
		} else {
			count, err := loadPacksInto(packs, cfg.Catalog.PackDir)
			if err != nil {
				return err
			}
			logger.Info("species packs loaded", "dir", cfg.Catalog.PackDir, "species", count)
		}
	}

	blobStore, err := openBlob(ctx, cfg)
	if err != nil {
		return err
	}
	worker := reports.NewWorker(svc, blobStore, logger.Named("reports"))
	worker.Start()

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: &httpapi.Handler{
			Service: svc,
			Reports: worker,
			Metrics: httpapi.MetricsHandler(registry),
			Logger:  logger.Named("http"),
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("aquacore serving",
		"addr", cfg.HTTP.Addr,
		"driver", cfg.Persistence.Driver,
		"blob", blobStore.Driver(),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		logger.Error("report worker shutdown", "error", err)
	}
	return nil
}
