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
	"github.com/upb/core-platform/app"
	"github.com/upb/core-platform/config"
	"github.com/upb/core-platform/routes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the API server and, when METRICS_ENABLED is set, the Prometheus
metrics listener on METRICS_PORT. When CITIES_CSV names a file and the city
table is empty, the catalog is imported before the listeners start.

Both listeners drain in-flight requests on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close(context.Background()) }()

	if cfg.Catalog.CitiesCSV != "" {
		if err := seedCities(ctx, deps, cfg.Catalog.CitiesCSV); err != nil {
			logger.Warn("city catalog not imported", zap.String("file", cfg.Catalog.CitiesCSV), zap.Error(err))
		}
	}

	servers := []server{{
		name: "api",
		http: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      routes.SetupRoutes(deps),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}}
	if cfg.Server.TLS.Enabled {
		servers[0].certFile = cfg.Server.TLS.CertFile
		servers[0].keyFile = cfg.Server.TLS.KeyFile
	}
	if cfg.Observability.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", deps.Metrics.Handler())
		servers = append(servers, server{
			name: "metrics",
			http: &http.Server{
				Addr:              cfg.MetricsAddress(),
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			},
		})
	}

	for _, s := range servers {
		logger.Info("listening", zap.String("server", s.name), zap.String("addr", s.http.Addr))
	}
	if err := runServers(ctx, servers, cfg.Server.ShutdownTimeout, logger); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func seedCities(ctx context.Context, deps *app.Dependencies, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, seeded, err := deps.CityService.SeedIfEmpty(ctx, f)
	if err != nil {
		return err
	}
	if seeded {
		deps.Logger.Info("city catalog imported",
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped))
	}
	return nil
}

type server struct {
	name     string
	http     *http.Server
	certFile string
	keyFile  string
}

func (s server) listen() error {
	var err error
	if s.certFile != "" {
		err = s.http.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		err = s.http.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s server: %w", s.name, err)
}

// runServers blocks until ctx is done or a listener fails, then shuts every
// server down within timeout.
func runServers(ctx context.Context, servers []server, timeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		g.Go(s.listen)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.http.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.name, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
