package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/storepulse/storepulse/internal/app"
	"github.com/storepulse/storepulse/internal/baseline"
	"github.com/storepulse/storepulse/internal/dashboard"
	"github.com/storepulse/storepulse/internal/observability"
	"github.com/storepulse/storepulse/internal/platform/cache"
	"github.com/storepulse/storepulse/internal/platform/db"
	"github.com/storepulse/storepulse/internal/reports"
	"github.com/storepulse/storepulse/internal/targets"
	"github.com/storepulse/storepulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	kpiCache := dashboard.NewCache(redisClient, cfg.KPICacheTTL, metrics).WithLogger(logger)

	reportsService := reports.NewService(reports.NewRepository(pool), kpiCache, metrics, logger)
	baselineService := baseline.NewService(baseline.NewRepository(pool), kpiCache, logger)
	targetsService := targets.NewService(targets.NewRepository(pool), logger)
	dashboardService := dashboard.NewService(reportsService, baselineService, targetsService, kpiCache, logger)
	dashboardService.WithClock(time.Now, cfg.Location())

	warmupJob := jobs.NewKPIWarmupJob(reportsService, dashboardService, logger, metrics.Jobs())
	warmupTask, err := jobs.NewKPIWarmupTask(jobs.KPIWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskKPIWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.KPIWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
