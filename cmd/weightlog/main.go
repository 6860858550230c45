package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	adapthttp "weightlog/internal/adapter/http"
	"weightlog/internal/adapter/memory"
	"weightlog/internal/adapter/postgres"
	"weightlog/internal/adapter/sqlite"
	"weightlog/internal/app"
	"weightlog/internal/config"
	"weightlog/internal/domain"
	"weightlog/internal/logger"
	"weightlog/internal/scheduler"
)

// store is what main needs from any backend.
type store interface {
	domain.WeightRepository
	domain.Maintainer
	Close() error
}

func main() {
	cfg := config.MustLoad(".env")
	log := logger.Must(logger.New(cfg.Env, cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("weightlog stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close store", zap.Error(err))
		}
	}()

	timeline := app.NewTimeline(db, logger.Named(log, "timeline"))
	weightSvc := app.NewWeightService(db, timeline, domain.SystemClock{}, loc, logger.Named(log, "svc.weight"))
	chartsSvc := app.NewChartsService(timeline, loc)

	var sched *scheduler.Scheduler
	if cfg.MaintenanceSchedule != "" {
		sched, err = scheduler.New(cfg.MaintenanceSchedule, db, logger.Named(log, "scheduler"))
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	h := adapthttp.New(weightSvc, timeline, chartsSvc, cfg.WebDir, logger.Named(log, "http")).
		WithChartSize(cfg.ChartWidth, cfg.ChartHeight).
		Handler()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		// Ends open event streams when a signal arrives.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, logger.Named(log, "store.postgres"))
	case config.BackendMemory:
		log.Warn("using in-memory store, entries are lost on exit")
		return memory.New(), nil
	default:
		return sqlite.Open(ctx, cfg.SQLitePath, logger.Named(log, "store.sqlite"))
	}
}
