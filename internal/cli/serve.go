package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/handshake"
	"github.com/aretw0/handshake/internal/presentation/tui"
	httpAdapter "github.com/aretw0/handshake/pkg/adapters/http"
	"github.com/aretw0/handshake/pkg/adapters/redis"
	"github.com/aretw0/handshake/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	ConfigPath string
	Overrides  Overrides
	Debug      bool
}

// BuildHandler mounts the process API and the Prometheus endpoint on one router.
func BuildHandler(engine httpAdapter.Engine, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Mount("/", httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger)))
	return r
}

// Serve starts the HTTP server backed by Redis.
// Processes are guarded by a Redis lock so that several instances can share a store.
func Serve(opts ServeOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	logger := createLogger(cfg, opts.Debug)

	store := newRedisStore(cfg, logger)
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	engineOpts := append(engineOptions(cfg, logger, opts.Debug),
		handshake.WithLocker(redis.NewLocker(store.Client(), cfg.Redis.Prefix)),
		handshake.WithLifecycleHooks(metrics.Hooks()),
	)
	engine := handshake.New(store, store, engineOpts...)
	defer engine.Close()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	tui.PrintBanner(os.Stderr)
	return ListenAndServe(sigCtx, ":"+cfg.HTTP.Port, BuildHandler(engine, reg, logger), logger, os.Stderr)
}

// ListenAndServe runs srv until ctx is done, then shuts it down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger, out io.Writer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "Handshake HTTP Server listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "err", err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("failed to close server: %w", err)
		}
	}
	fmt.Fprintln(out, "Handshake HTTP Server stopped gracefully")
	return nil
}
