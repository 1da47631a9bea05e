// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/previewdeck/internal/api"
	"github.com/starford/previewdeck/internal/catalog"
	"github.com/starford/previewdeck/internal/mcpserver"
	"github.com/starford/previewdeck/internal/notestore"
	"github.com/starford/previewdeck/internal/sse"
	"github.com/starford/previewdeck/internal/storage"
)

// newBucket constructs the configured storage backend. An unconfigured
// backend yields (nil, nil): the service still starts and the catalog
// endpoint reports 503.
func newBucket(cfg *StorageConfig) (storage.Bucket, *storage.FS, error) {
	switch cfg.Backend {
	case BackendFS:
		if err := os.MkdirAll(cfg.FS.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create previews dir: %w", err)
		}
		fsBucket, err := storage.NewFS(cfg.FS.Path, cfg.FS.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init fs bucket: %w", err)
		}
		return fsBucket, fsBucket, nil
	case BackendSupabase:
		b := storage.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket,
			time.Duration(cfg.Supabase.TimeoutSeconds)*time.Second)
		return b, nil, nil
	default:
		return nil, nil, nil
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage backend.
	bucket, fsBucket, err := newBucket(&cfg.Storage)
	if err != nil {
		return err
	}
	if bucket == nil {
		logger.Warn("no storage backend configured; catalog endpoint will answer 503")
	}

	// Initialize SQLite note store.
	db, err := notestore.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init note store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build catalog service and API router.
	catalogSvc := catalog.NewService(bucket, logger)
	apiRouter := api.NewRouter(catalogSvc, db, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// With the fs backend this process also serves the public audio URLs.
	if fsBucket != nil {
		prefix := cfg.Storage.FS.BaseURL + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(fsBucket.Root()))))
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the fs bucket for new previews and notify connected players.
	if fsBucket != nil {
		g.Go(func() error {
			if err := catalog.Watch(gCtx, fsBucket.Root(), logger, broker.PublishCatalogChanged); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the stdio MCP server instead of the HTTP service.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// MCP speaks JSON-RPC on stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	bucket, _, err := newBucket(&cfg.Storage)
	if err != nil {
		return err
	}

	db, err := notestore.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init note store: %w", err)
	}
	defer db.Close()

	srv := mcpserver.New(catalog.NewService(bucket, logger), db)
	return srv.ServeStdio()
}
