package main

import (
	"context"
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
	dashboardhttp "github.com/storepulse/storepulse/internal/dashboard/http"
	"github.com/storepulse/storepulse/internal/observability"
	"github.com/storepulse/storepulse/internal/platform/cache"
	"github.com/storepulse/storepulse/internal/platform/db"
	"github.com/storepulse/storepulse/internal/reports"
	"github.com/storepulse/storepulse/internal/targets"
	"github.com/storepulse/storepulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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
	if err := kpiCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("kpi cache invalidation listener", slog.Any("error", err))
	}

	reportsService := reports.NewService(reports.NewRepository(dbpool), kpiCache, metrics, logger)
	baselineService := baseline.NewService(baseline.NewRepository(dbpool), kpiCache, logger)
	targetsService := targets.NewService(targets.NewRepository(dbpool), logger)

	dashboardService := dashboard.NewService(reportsService, baselineService, targetsService, kpiCache, logger)
	dashboardService.WithClock(time.Now, cfg.Location())

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ReportsHandler:   reports.NewHandler(logger, reportsService, cfg.SubmitLimitPerMinute),
		BaselineHandler:  baseline.NewHandler(logger, baselineService),
		TargetsHandler:   targets.NewHandler(logger, targetsService),
		DashboardHandler: dashboardhttp.NewHandler(logger, dashboardService),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		Health: map[string]app.Pinger{
			"postgres": dbpool,
			"redis":    redisPinger{redisClient},
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
