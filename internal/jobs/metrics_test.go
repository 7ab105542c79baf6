package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metrics:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_ = m.Track("kpi:warmup").End(nil)
	err := m.Track("kpi:warmup").End(errors.New("boom"))
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	if got := counterValue(t, reg, "storepulse_jobs_total", map[string]string{"job": "kpi:warmup", "status": "success"}); got != 1 {
		t.Fatalf("expected 1 success got %v", got)
	}
	if got := counterValue(t, reg, "storepulse_jobs_failures_total", map[string]string{"job": "kpi:warmup"}); got != 1 {
		t.Fatalf("expected 1 failure got %v", got)
	}
}

func TestAddWarmedIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.AddWarmed(0)
	m.AddWarmed(-2)
	m.AddWarmed(3)
	if got := counterValue(t, reg, "storepulse_kpi_warmed_stores_total", nil); got != 3 {
		t.Fatalf("expected 3 warmed got %v", got)
	}
}

func TestNilMetricsTracker(t *testing.T) {
	var m *Metrics
	if err := m.Track("x").End(nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	m.AddWarmed(1)
}
