package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/storepulse/storepulse/internal/dashboard"
	jobmetrics "github.com/storepulse/storepulse/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StoreLister finds stores with reports in a window.
type StoreLister interface {
	ActiveStores(ctx context.Context, from, to time.Time) ([]string, error)
}

// Summarizer computes and caches dashboard summaries.
type Summarizer interface {
	Summary(ctx context.Context, filter dashboard.Filter) (dashboard.Summary, error)
	Today() time.Time
}

// KPIWarmupJob fills the KPI cache with month-to-date summaries so the first
// dashboard view of the day is served from Redis.
type KPIWarmupJob struct {
	Stores    StoreLister
	Dashboard Summarizer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	// StoreTimeout bounds each store's computation.
	StoreTimeout time.Duration
}

// NewKPIWarmupJob wires dependencies for the warmup handler.
func NewKPIWarmupJob(stores StoreLister, dash Summarizer, logger *slog.Logger, metrics *jobmetrics.Metrics) *KPIWarmupJob {
	return &KPIWarmupJob{
		Stores:       stores,
		Dashboard:    dash,
		Logger:       logger,
		Metrics:      metrics,
		StoreTimeout: 20 * time.Second,
	}
}

// Handle processes kpi:warmup tasks. A failing store is logged and skipped;
// the run fails only when no store could be warmed.
func (j *KPIWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil || j.Stores == nil {
		return errors.New("kpi warmup: handler not configured")
	}
	var payload KPIWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("kpi warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	today, set, err := payload.Day()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if !set {
		today = j.Dashboard.Today()
	}

	tracker := j.metrics().Track(TaskKPIWarmup)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("date", today.Format(dashboard.DateLayout)))
	logger.Info("starting kpi warmup")
	start := time.Now()

	stores := []string{payload.StoreID}
	if payload.StoreID == "" {
		window := dashboard.MonthToDate("", today)
		stores, err = j.Stores.ActiveStores(ctx, window.From, window.To)
		if err != nil {
			logger.Error("load active stores", slog.Any("error", err))
			return err
		}
	}
	if len(stores) == 0 {
		logger.Info("no stores reported this month")
		return nil
	}

	warmed := 0
	var failures []error
	for _, store := range stores {
		if err := j.warmStore(ctx, store, today); err != nil {
			logger.Error("warm store", slog.String("store_id", store), slog.Any("error", err))
			failures = append(failures, fmt.Errorf("%s: %w", store, err))
			continue
		}
		warmed++
	}
	j.metrics().AddWarmed(warmed)

	logger.Info("completed kpi warmup",
		slog.Int("stores", warmed),
		slog.Int("failed", len(failures)),
		slog.Duration("duration", time.Since(start)))
	if warmed == 0 {
		return errors.Join(failures...)
	}
	return nil
}

func (j *KPIWarmupJob) warmStore(ctx context.Context, store string, today time.Time) error {
	timeout := j.StoreTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	storeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := j.Dashboard.Summary(storeCtx, dashboard.MonthToDate(store, today))
	return err
}

func (j *KPIWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskKPIWarmup))
	}
	return slog.Default().With(slog.String("job", TaskKPIWarmup))
}

func (j *KPIWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
