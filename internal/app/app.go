package app

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"insight-server/internal/config"
	"insight-server/internal/database"
	"insight-server/internal/handler"
	"insight-server/internal/metabase"
	"insight-server/internal/middleware"
	"insight-server/internal/repository"
	"insight-server/internal/router"
	"insight-server/internal/service"
)

type App struct {
	cfg    *config.Config
	db     *database.DB
	server *http.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	users := repository.NewUserRepository(db.Pool)
	schema := repository.NewSchemaRepository(db.Pool)

	tokens := service.NewTokenService(cfg.JWTKey, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	auth := service.NewAuthService(users, tokens)
	accounts := service.NewAccountService(users)

	uploads, err := service.NewUploadService(users, cfg.UploadRoot, cfg.ThumbnailRoot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	email := service.NewEmailService()
	metrics := service.NewMetricsService(users)

	mb := metabase.NewClient(cfg.MetabaseURL, cfg.MetabaseUsername, cfg.MetabasePassword, cfg.MetabaseDatabaseID)
	visualizations := service.NewVisualizationService(cfg.N8NWebhookURL, mb)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics(registry)

	authMiddleware := middleware.NewAuthMiddleware(tokens, users)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(auth, accounts),
		User:          handler.NewUserHandler(accounts),
		Upload:        handler.NewUploadHandler(uploads, cfg.MaxUploadSize),
		Email:         handler.NewEmailHandler(email),
		Schema:        handler.NewSchemaHandler(schema, cfg.SchemaName),
		Visualization: handler.NewVisualizationHandler(visualizations),
		Metrics:       handler.NewMetricsHandler(metrics),
	}

	mux := router.New(cfg, registry, httpMetrics, authMiddleware, handlers)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{cfg: cfg, db: db, server: server}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or a
// shutdown signal arrives, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.db.Close()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.db.Close()
	return err
}
