// ABOUTME: Serve command starts the allocation HTTP API
// ABOUTME: Configured from the environment and an optional .env file; shuts down gracefully

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/config"
	"github.com/markalston/vm-allocator/handlers"
	"github.com/markalston/vm-allocator/logger"
	"github.com/markalston/vm-allocator/middleware"
	"github.com/markalston/vm-allocator/services"
)

const shutdownTimeout = 10 * time.Second

var envFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the allocation HTTP API",
	Long: `Start the allocation HTTP API under /api/v1.

Environment Variables:
  PORT                  Listen port (default: 8080)
  CACHE_TTL             Seconds a workload allocator is kept after creation (default: 300, 0 = forever)
  CATALOG_FILE          YAML or JSON catalog file merged over the presets
  CORS_ALLOWED_ORIGINS  Comma-separated allowed origins, or *
  RATE_LIMIT_ENABLED    Per-client rate limiting (default: true)
  RATE_LIMIT_RPS        Sustained requests per second per client (default: 10)
  RATE_LIMIT_BURST      Burst size per client (default: 20)
  LOG_LEVEL, LOG_FORMAT Server log level and format (text or json)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		logger.Init()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd)
}

// newServer wires the catalog registry, handlers, and middleware into an
// http.Server. The returned cleanup releases the handler's cache.
func newServer(cfg *config.Config) (*http.Server, func(), error) {
	registry, err := services.NewCatalogRegistryFromFile(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Catalogs loaded", "count", len(registry.List()), "file", cfg.CatalogFile)

	h := handlers.NewHandler(cfg, registry)
	mux := handlers.NewRouter(h)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
		slog.Info("Rate limiting enabled", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	} else {
		slog.Warn("Rate limiting disabled")
	}

	handler := middleware.Chain(mux.ServeHTTP,
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(limiter, middleware.ClientIP),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, h.Close, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	srv, cleanup, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
