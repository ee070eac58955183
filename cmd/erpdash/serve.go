package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/events"
	"github.com/JonMunkholm/erpdash/internal/export"
	"github.com/JonMunkholm/erpdash/internal/seed"
	"github.com/JonMunkholm/erpdash/internal/store/postgres"
	"github.com/JonMunkholm/erpdash/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// closer is something to release on shutdown.
type closer struct {
	name  string
	close func() error
}

// app is a fully wired server and what it holds open.
type app struct {
	service *core.Service
	server  *web.Server
	closers []closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			slog.Warn("close failed", "resource", c.name, "error", err)
		}
	}
}

// buildApp loads the seed and wires the stores, publisher and snapshot
// writer around a service. On error everything opened so far is closed.
func buildApp(ctx context.Context) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	data, err := seed.Load(cfg.Seed.File)
	if err != nil {
		return nil, err
	}
	slog.Info("seed loaded", "file", cfg.Seed.File, "summary", data.Summary())

	customers, err := data.NewCustomerStore()
	if err != nil {
		return nil, fmt.Errorf("build customer store: %w", err)
	}

	var opts []web.Option

	var projects core.ProjectStore
	if cfg.Database.Enabled() {
		store, err := openDatabase(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer{"database", store.Close})
		opts = append(opts, web.WithHealthCheck("database", store.DB().PingContext))
		if cfg.Database.AutoMigrate {
			version, err := store.Migrate()
			if err != nil {
				return nil, err
			}
			slog.Info("migrations applied", "version", version)
		}
		projects = store
	} else {
		slog.Info("no DATABASE_URL, using in-memory project store")
		projects = data.NewProjectStore()
	}

	var publisher core.Publisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, nats.Name(cfg.Events.Name))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer{"nats", pub.Close})
		opts = append(opts, web.WithHealthCheck("nats", pub.Ping))
		publisher = pub
		slog.Info("publishing events to NATS")
	}

	snapshots, err := snapshotWriter(ctx)
	if err != nil {
		return nil, err
	}

	catalog := data.Catalog
	a.service = core.NewService(customers, projects, core.Options{
		Catalog:   &catalog,
		Events:    publisher,
		Snapshots: snapshots,
		Exports:   core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
	})
	a.server = web.NewServer(a.service, cfg, opts...)
	return a, nil
}

func openDatabase(ctx context.Context) (*postgres.Store, error) {
	store, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("connected to database", "name", postgres.DatabaseName(cfg.Database.URL))
	return store, nil
}

// snapshotWriter picks S3 when a bucket is set, then a local directory.
// A nil writer disables snapshots.
func snapshotWriter(ctx context.Context) (core.SnapshotWriter, error) {
	switch {
	case cfg.Export.S3Bucket != "":
		w, err := export.NewS3Writer(ctx, export.S3Options{
			Bucket:    cfg.Export.S3Bucket,
			Prefix:    cfg.Export.S3Prefix,
			Region:    cfg.Export.S3Region,
			Endpoint:  cfg.Export.S3Endpoint,
			PathStyle: cfg.Export.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("snapshots go to S3", "bucket", cfg.Export.S3Bucket, "prefix", cfg.Export.S3Prefix)
		return w, nil
	case cfg.Export.Dir != "":
		slog.Info("snapshots go to a local directory", "dir", cfg.Export.Dir)
		return export.NewDirWriter(cfg.Export.Dir), nil
	default:
		return nil, nil
	}
}

func runServe(ctx context.Context) error {
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background jobs stop with the signal context.
	jobsDone := make(chan struct{})
	go func() {
		defer close(jobsDone)
		a.service.StartExportScheduler(ctx, cfg.Export.Interval)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		stop()
		<-jobsDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	<-jobsDone

	// Wait for in-flight snapshot exports (with timeout)
	if status := a.service.Exports().Status(); status.Active > 0 {
		slog.Info("waiting for exports to complete", "active", status.Active)
		if err := a.service.Exports().WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("exports did not complete in time", "error", err)
		} else {
			slog.Info("all exports completed")
		}
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
