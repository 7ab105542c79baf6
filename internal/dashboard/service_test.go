package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/internal/baseline"
	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/httpx"
	"github.com/storepulse/storepulse/internal/targets"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeReports struct {
	mu    sync.Mutex
	rows  []kpi.ReportRecord
	calls int
}

func (f *fakeReports) Records(_ context.Context, storeID string, from, to time.Time) ([]kpi.ReportRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []kpi.ReportRecord
	for _, r := range f.rows {
		if r.StoreID == storeID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeBaselines struct {
	base    *kpi.ExpenseBaseline
	monthly *baseline.MonthlyExpense
	err     error
}

func (f *fakeBaselines) Resolve(context.Context, string, time.Time) (*kpi.ExpenseBaseline, error) {
	return f.base, f.err
}

func (f *fakeBaselines) Monthly(context.Context, string, time.Time) (*baseline.MonthlyExpense, error) {
	return f.monthly, nil
}

type fakeTargets struct{ target *targets.Target }

func (f fakeTargets) Lookup(context.Context, string) (*targets.Target, error) { return f.target, nil }

type countingObserver struct {
	mu       sync.Mutex
	hits     int
	misses   int
	computes int
}

func (o *countingObserver) CacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *countingObserver) ObserveCompute(time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.computes++
}

func marchRows() []kpi.ReportRecord {
	return []kpi.ReportRecord{
		{Date: day(2025, 3, 1), StoreID: "s1", OperationType: kpi.OperationLunch, Sales: 100000, Customers: 50, Purchase: 30000},
		{Date: day(2025, 3, 1), StoreID: "s1", OperationType: kpi.OperationDinner, Sales: 200000, Customers: 80, Purchase: 60000},
		{Date: day(2025, 2, 10), StoreID: "s1", OperationType: kpi.OperationFullDay, Sales: 240000},
		{Date: day(2025, 3, 1), StoreID: "s2", OperationType: kpi.OperationFullDay, Sales: 999},
	}
}

func newTestService(t *testing.T, reports *fakeReports, baselines BaselineSource, tg TargetSource) (*Service, *Cache, *countingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	obs := &countingObserver{}
	cache := NewCache(client, time.Minute, obs)
	svc := NewService(reports, baselines, tg, cache, nil)
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }, time.UTC)
	return svc, cache, obs
}

func marchFilter() Filter {
	prevFrom, prevTo := day(2025, 2, 1), day(2025, 2, 28)
	return Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 31), CompareFrom: &prevFrom, CompareTo: &prevTo}
}

func TestSummaryComputesAndCaches(t *testing.T) {
	reports := &fakeReports{rows: marchRows()}
	svc, cache, obs := newTestService(t, reports, nil, nil)
	ctx := context.Background()

	first, err := svc.Summary(ctx, marchFilter())
	require.NoError(t, err)
	assert.Equal(t, 300000.0, first.KPI.TotalSales)
	assert.Equal(t, 60000.0, first.KPI.PurchaseTotal)
	assert.InDelta(t, 25.0, first.KPI.SalesGrowth, 1e-9)
	assert.Equal(t, "2025-03-15", first.EffectiveEnd)
	assert.Equal(t, 2, reports.calls)

	second, err := svc.Summary(ctx, marchFilter())
	require.NoError(t, err)
	assert.Equal(t, first.KPI, second.KPI)
	assert.Equal(t, 2, reports.calls, "second call should be served from cache")
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 1, obs.computes)

	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Summary(ctx, marchFilter())
	require.NoError(t, err)
	assert.Equal(t, 4, reports.calls, "bump should force a recompute")
}

func TestSummaryAppliesBaselineAndTargets(t *testing.T) {
	reports := &fakeReports{rows: marchRows()}
	base := &kpi.ExpenseBaseline{LaborCost: 20000, Rent: 10000}
	maxLabor := 5.0
	svc, _, _ := newTestService(t, reports, &fakeBaselines{base: base}, fakeTargets{target: &targets.Target{MaxLaborRate: &maxLabor}})

	got, err := svc.Summary(context.Background(), Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 31)})
	require.NoError(t, err)
	assert.Equal(t, 20000.0, got.KPI.LaborTotal)
	assert.Equal(t, 90000.0, got.KPI.TotalExpenses)
	require.Len(t, got.Checks, 1)
	assert.Equal(t, targets.MetricLaborRate, got.Checks[0].Metric)
	assert.True(t, got.Checks[0].Breached)
	assert.Equal(t, 1, got.Breaches)
}

func TestSummaryProratesLabor(t *testing.T) {
	reports := &fakeReports{rows: marchRows()}
	monthly := &baseline.MonthlyExpense{LaborCost: 310000, OpenDays: 31}
	svc, _, _ := newTestService(t, reports, &fakeBaselines{monthly: monthly}, nil)

	f := Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 31), ProrateLabor: true}
	got, err := svc.Summary(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, got.KPI.LaborTotal)
	assert.Equal(t, 70000.0, got.KPI.TotalExpenses)
}

func TestSummaryProratedLaborFeedsProfitGrowth(t *testing.T) {
	reports := &fakeReports{rows: []kpi.ReportRecord{
		{Date: day(2025, 3, 1), StoreID: "s1", OperationType: kpi.OperationFullDay, Sales: 200000, Purchase: 60000, LaborCost: 40000},
		{Date: day(2025, 2, 10), StoreID: "s1", OperationType: kpi.OperationFullDay, Sales: 150000, Purchase: 50000, LaborCost: 50000},
	}}
	monthly := &baseline.MonthlyExpense{LaborCost: 3000000, OpenDays: 30}
	svc, _, _ := newTestService(t, reports, &fakeBaselines{monthly: monthly}, nil)

	f := marchFilter()
	f.ProrateLabor = true
	got, err := svc.Summary(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, got.KPI.LaborTotal)
	assert.Equal(t, 40000.0, got.KPI.OperatingProfit)
	assert.InDelta(t, 33.333333, got.KPI.SalesGrowth, 1e-4)
	assert.InDelta(t, -20.0, got.KPI.ProfitGrowth, 1e-9, "growth must follow the pro-rated profit")
}

type blockingReports struct {
	rows    []kpi.ReportRecord
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	calls int
}

func (b *blockingReports) Records(ctx context.Context, storeID string, from, to time.Time) ([]kpi.ReportRecord, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.once.Do(func() { close(b.started) })

	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var out []kpi.ReportRecord
	for _, r := range b.rows {
		if r.StoreID == storeID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestSummarySharedLoadOutlivesCancelledCaller(t *testing.T) {
	reports := &blockingReports{rows: marchRows(), started: make(chan struct{}), release: make(chan struct{})}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(reports, nil, nil, NewCache(client, time.Minute, nil), nil)
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }, time.UTC)

	f := Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 31)}
	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Summary(ctx, f)
		firstErr <- err
	}()

	<-reports.started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(reports.release)

	got, err := svc.Summary(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 300000.0, got.KPI.TotalSales)

	reports.mu.Lock()
	defer reports.mu.Unlock()
	assert.Equal(t, 1, reports.calls, "the load started by the cancelled caller should be reused")
}

func TestSummaryRejectsInvalidRange(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeReports{}, nil, nil)

	_, err := svc.Summary(context.Background(), Filter{StoreID: "s1", From: day(2025, 3, 31), To: day(2025, 3, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestSummaryPropagatesLoadErrors(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeReports{}, &fakeBaselines{err: errors.New("db down")}, nil)

	_, err := svc.Summary(context.Background(), Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSummaryWithoutCache(t *testing.T) {
	reports := &fakeReports{rows: marchRows()}
	svc := NewService(reports, nil, nil, nil, nil)
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC) }, nil)

	got, err := svc.Summary(context.Background(), Filter{StoreID: "s2", From: day(2025, 3, 1), To: day(2025, 3, 1)})
	require.NoError(t, err)
	assert.Equal(t, 999.0, got.KPI.TotalSales)
	assert.Empty(t, got.Checks)
}

func TestTodayUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	svc := NewService(&fakeReports{}, nil, nil, nil, nil)
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC) }, tokyo)

	assert.Equal(t, day(2025, 3, 15), svc.Today())
}

func TestFilterValidate(t *testing.T) {
	from := day(2025, 2, 1)
	cases := []struct {
		name   string
		filter Filter
		ok     bool
	}{
		{name: "valid", filter: Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 1)}, ok: true},
		{name: "missing store", filter: Filter{From: day(2025, 3, 1), To: day(2025, 3, 2)}},
		{name: "missing dates", filter: Filter{StoreID: "s1"}},
		{name: "too long", filter: Filter{StoreID: "s1", From: day(2024, 1, 1), To: day(2025, 3, 1)}},
		{name: "half comparison", filter: Filter{StoreID: "s1", From: day(2025, 3, 1), To: day(2025, 3, 2), CompareFrom: &from}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRange)
			}
		})
	}
}

func TestMonthToDate(t *testing.T) {
	f := MonthToDate("s1", day(2025, 3, 15))
	assert.Equal(t, day(2025, 3, 1), f.From)
	assert.Equal(t, day(2025, 3, 15), f.To)
	require.True(t, f.HasComparison())
	assert.Equal(t, day(2025, 2, 1), *f.CompareFrom)
	assert.Equal(t, day(2025, 2, 28), *f.CompareTo)
	assert.NoError(t, f.Validate())
}
