package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/internal/dashboard"
	jobmetrics "github.com/storepulse/storepulse/internal/jobs"
)

type stubStores struct {
	stores   []string
	from, to time.Time
	err      error
}

func (s *stubStores) ActiveStores(_ context.Context, from, to time.Time) ([]string, error) {
	s.from, s.to = from, to
	return s.stores, s.err
}

type stubDashboard struct {
	mu      sync.Mutex
	today   time.Time
	filters []dashboard.Filter
	failFor map[string]bool
}

func (d *stubDashboard) Summary(_ context.Context, f dashboard.Filter) (dashboard.Summary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = append(d.filters, f)
	if d.failFor[f.StoreID] {
		return dashboard.Summary{}, errors.New("compute failed")
	}
	return dashboard.Summary{Filter: f}, nil
}

func (d *stubDashboard) Today() time.Time { return d.today }

func newTask(t *testing.T, payload KPIWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewKPIWarmupTask(payload)
	require.NoError(t, err)
	return task
}

func TestKPIWarmupWarmsActiveStores(t *testing.T) {
	stores := &stubStores{stores: []string{"s1", "s2"}}
	dash := &stubDashboard{today: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)}
	job := NewKPIWarmupJob(stores, dash, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), newTask(t, KPIWarmupPayload{})))

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), stores.from)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), stores.to)
	require.Len(t, dash.filters, 2)
	ids := []string{dash.filters[0].StoreID, dash.filters[1].StoreID}
	sort.Strings(ids)
	assert.Equal(t, []string{"s1", "s2"}, ids)
	assert.True(t, dash.filters[0].HasComparison())
}

func TestKPIWarmupSingleStoreAndDate(t *testing.T) {
	stores := &stubStores{}
	dash := &stubDashboard{}
	job := NewKPIWarmupJob(stores, dash, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), newTask(t, KPIWarmupPayload{StoreID: "s9", Date: "2025-02-10"})))
	require.Len(t, dash.filters, 1)
	assert.Equal(t, "s9", dash.filters[0].StoreID)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), dash.filters[0].To)
	assert.True(t, stores.from.IsZero(), "store lookup should be skipped")
}

func TestKPIWarmupToleratesPartialFailure(t *testing.T) {
	stores := &stubStores{stores: []string{"s1", "s2"}}
	dash := &stubDashboard{today: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), failFor: map[string]bool{"s1": true}}
	job := NewKPIWarmupJob(stores, dash, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	assert.NoError(t, job.Handle(context.Background(), newTask(t, KPIWarmupPayload{})))
}

func TestKPIWarmupFailsWhenNothingWarmed(t *testing.T) {
	stores := &stubStores{stores: []string{"s1"}}
	dash := &stubDashboard{failFor: map[string]bool{"s1": true}}
	job := NewKPIWarmupJob(stores, dash, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), newTask(t, KPIWarmupPayload{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s1")
}

func TestKPIWarmupBadPayloadSkipsRetry(t *testing.T) {
	job := NewKPIWarmupJob(&stubStores{}, &stubDashboard{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskKPIWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), newTask(t, KPIWarmupPayload{Date: "15/03/2025"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestKPIWarmupStoreListFailure(t *testing.T) {
	job := NewKPIWarmupJob(&stubStores{err: errors.New("db down")}, &stubDashboard{}, nil, nil)
	err := job.Handle(context.Background(), newTask(t, KPIWarmupPayload{}))
	assert.EqualError(t, err, "db down")
}
