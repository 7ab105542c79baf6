package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/storepulse/storepulse/internal/baseline"
	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/targets"
)

// computeTimeout bounds a shared summary load once it is detached from the
// caller that started it.
const computeTimeout = 30 * time.Second

// ReportSource loads engine records for a store window.
type ReportSource interface {
	Records(ctx context.Context, storeID string, from, to time.Time) ([]kpi.ReportRecord, error)
}

// BaselineSource resolves the baseline and monthly expense of a store.
type BaselineSource interface {
	Resolve(ctx context.Context, storeID string, month time.Time) (*kpi.ExpenseBaseline, error)
	Monthly(ctx context.Context, storeID string, month time.Time) (*baseline.MonthlyExpense, error)
}

// TargetSource returns a store's targets, nil when none are set.
type TargetSource interface {
	Lookup(ctx context.Context, storeID string) (*targets.Target, error)
}

// Service computes dashboard summaries.
type Service struct {
	reports   ReportSource
	baselines BaselineSource
	targets   TargetSource
	cache     *Cache
	logger    *slog.Logger
	group     singleflight.Group
	now       func() time.Time
	loc       *time.Location
}

// NewService wires the sources with a cache. targets and cache may be nil.
func NewService(reports ReportSource, baselines BaselineSource, targets TargetSource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reports:   reports,
		baselines: baselines,
		targets:   targets,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		loc:       time.UTC,
	}
}

// WithClock overrides the time source and the location "today" is read in.
func (s *Service) WithClock(now func() time.Time, loc *time.Location) {
	if now != nil {
		s.now = now
	}
	if loc != nil {
		s.loc = loc
	}
}

// Today returns the current calendar day in the service location.
func (s *Service) Today() time.Time {
	t := s.now().In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary returns the KPI summary for filter, evaluated against the store's
// targets.
func (s *Service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	if err := filter.Validate(); err != nil {
		return Summary{}, err
	}
	today := s.Today()
	end := kpi.EffectiveEndDate(today, &filter.To)

	result, err := s.cachedKPI(ctx, filter, today, end)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Filter:       filter,
		KPI:          result,
		Checks:       []targets.Check{},
		EffectiveEnd: end.Format(DateLayout),
		ComputedAt:   s.now().UTC(),
	}
	if s.targets != nil {
		target, err := s.targets.Lookup(ctx, filter.StoreID)
		if err != nil {
			return Summary{}, fmt.Errorf("load targets: %w", err)
		}
		if target != nil {
			summary.Checks = targets.Evaluate(result, *target)
			summary.Breaches = targets.Breaches(summary.Checks)
		}
	}
	return summary, nil
}

func (s *Service) cachedKPI(ctx context.Context, filter Filter, today, end time.Time) (kpi.KPIResult, error) {
	key, err := s.cache.BuildKey(ctx, cacheKeyParts(filter, end)...)
	if err != nil {
		return kpi.KPIResult{}, fmt.Errorf("build cache key: %w", err)
	}

	// The load is shared by every caller waiting on key, so one caller
	// going away must not cancel it for the others.
	resCh := s.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		var result kpi.KPIResult
		err := s.cache.FetchJSON(loadCtx, key, &result, func(ctx context.Context) (any, error) {
			return s.compute(ctx, filter, today)
		})
		return result, err
	})
	select {
	case <-ctx.Done():
		return kpi.KPIResult{}, ctx.Err()
	case res := <-resCh:
		if res.Err != nil {
			return kpi.KPIResult{}, res.Err
		}
		return res.Val.(kpi.KPIResult), nil
	}
}

// compute loads the inputs concurrently and runs the engine.
func (s *Service) compute(ctx context.Context, filter Filter, today time.Time) (kpi.KPIResult, error) {
	start := time.Now()
	var (
		current  []kpi.ReportRecord
		previous []kpi.ReportRecord
		base     *kpi.ExpenseBaseline
		monthly  *baseline.MonthlyExpense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.reports.Records(gctx, filter.StoreID, filter.From, filter.To)
		return err
	})
	if filter.HasComparison() {
		g.Go(func() error {
			var err error
			previous, err = s.reports.Records(gctx, filter.StoreID, *filter.CompareFrom, *filter.CompareTo)
			return err
		})
	}
	if s.baselines != nil {
		g.Go(func() error {
			var err error
			base, err = s.baselines.Resolve(gctx, filter.StoreID, filter.To)
			return err
		})
		if filter.ProrateLabor {
			g.Go(func() error {
				var err error
				monthly, err = s.baselines.Monthly(gctx, filter.StoreID, filter.To)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return kpi.KPIResult{}, fmt.Errorf("load kpi inputs: %w", err)
	}

	rangeEnd := filter.To
	result := kpi.Compute(kpi.Input{
		Records:         current,
		PreviousRecords: previous,
		Baseline:        base,
		Today:           today,
		RangeEnd:        &rangeEnd,
	})
	if monthly != nil {
		result = baseline.ProrateLabor(result, *monthly, result.ReportCount, previous)
	}

	if s.cache != nil && s.cache.observer != nil {
		s.cache.observer.ObserveCompute(time.Since(start))
	}
	s.logger.Debug("kpi computed",
		slog.String("store_id", filter.StoreID),
		slog.Int("records", len(current)),
		slog.Int("previous_records", len(previous)),
		slog.Bool("baseline", base != nil))
	return result, nil
}

func cacheKeyParts(f Filter, end time.Time) []string {
	cmpFrom, cmpTo := "-", "-"
	if f.HasComparison() {
		cmpFrom = f.CompareFrom.Format(DateLayout)
		cmpTo = f.CompareTo.Format(DateLayout)
	}
	return []string{
		"kpi", f.StoreID,
		f.From.Format(DateLayout), f.To.Format(DateLayout),
		cmpFrom, cmpTo,
		end.Format(DateLayout),
		strconv.FormatBool(f.ProrateLabor),
	}
}
