// Package entrypoint wires the services together and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/bookshelf"
	"github.com/dengxuezhao/kompanion/internal/config"
	"github.com/dengxuezhao/kompanion/internal/database"
	"github.com/dengxuezhao/kompanion/internal/database/books"
	"github.com/dengxuezhao/kompanion/internal/database/devices"
	progressrepo "github.com/dengxuezhao/kompanion/internal/database/progress"
	"github.com/dengxuezhao/kompanion/internal/database/users"
	http_controllers "github.com/dengxuezhao/kompanion/internal/http"
	"github.com/dengxuezhao/kompanion/internal/metadata"
	"github.com/dengxuezhao/kompanion/internal/progress"
	"github.com/dengxuezhao/kompanion/internal/stats"
	"github.com/dengxuezhao/kompanion/internal/storage"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it within
// the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server",
			zap.String("host", cfg.HTTP.Host),
			zap.Int32("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server exiting")
}

// Run builds the full service graph from configuration and serves it.
func Run(cfg *config.Config, version string) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting kompanion", zap.String("version", version))

	if cfg.Auth.Password == "" {
		logger.Warn("KOMPANION_AUTH_PASSWORD is not set, the management API is disabled")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	store, err := storage.New(cfg.BookStorage, db.DB)
	if err != nil {
		logger.Fatal("failed to initialize book storage", zap.Error(err))
	}
	logger.Info("book storage ready", zap.String("type", string(cfg.BookStorage.Type)))

	authSvc := auth.NewService(
		devices.NewRepository(db.DB),
		users.NewRepository(db.DB),
		cfg.Auth,
		logger,
	)
	shelf := bookshelf.NewShelf(store, books.NewRepository(db.DB), metadata.NewExtractor(logger), logger)
	progressSvc := progress.NewService(progressrepo.NewRepository(db.DB), logger)
	statsSvc := stats.NewService(store, logger)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Shelf:    shelf,
		Progress: progressSvc,
		Auth:     authSvc,
		Stats:    statsSvc,
		Database: db,
		Version:  version,
		Logger:   logger,
	})

	Serve(router, cfg, logger, func(ctx context.Context) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	})
}
