package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	imagehandler "github.com/fedotovm/imagestore/internal/api/handlers/image"
	logshandler "github.com/fedotovm/imagestore/internal/api/handlers/logs"
	"github.com/fedotovm/imagestore/internal/api/router"
	"github.com/fedotovm/imagestore/internal/api/server"
	"github.com/fedotovm/imagestore/internal/config"
	"github.com/fedotovm/imagestore/internal/logger"
	"github.com/fedotovm/imagestore/internal/processor"
	imagerepo "github.com/fedotovm/imagestore/internal/repository/image"
	imagesvc "github.com/fedotovm/imagestore/internal/service/image"
	"github.com/fedotovm/imagestore/internal/worker"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad()

	if err := logger.Setup(&cfg.Log); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to set up log file")
	}

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// The database may come up after the service does; ping with backoff
	// before accepting traffic. Uploads themselves are never retried.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}
	if err := retry.Do(func() error {
		return db.Master.PingContext(ctx)
	}, strategy); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("database is unreachable")
	}

	// Initialize repository and ensure the images table exists.
	repo := imagerepo.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	// Worker pool keeps the CPU-bound pipeline off request-serving goroutines.
	pool := worker.NewPool(cfg.Workers.PoolSize, cfg.Workers.QueueSize)

	proc := processor.New(cfg.Upload.MaxImageDimension)
	service := imagesvc.NewService(proc, repo, pool)

	imgHandler := imagehandler.NewHandler(service, &cfg.Upload)
	logHandler := logshandler.NewHandler(cfg.Log.File)

	r := router.Setup(imgHandler, logHandler, cfg.Auth.BearerToken)
	s := server.New(cfg.Server.Addr(), r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr()).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Drain in-flight pipeline work before closing the database.
	pool.Close()

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}
}
