package targets

import (
	"testing"

	"github.com/storepulse/storepulse/internal/kpi"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluateSkipsUnsetGoals(t *testing.T) {
	if got := Evaluate(kpi.KPIResult{TotalSales: 1000}, Target{}); len(got) != 0 {
		t.Fatalf("expected no checks got %d", len(got))
	}
}

func TestEvaluateFlagsBreaches(t *testing.T) {
	result := kpi.KPIResult{
		TotalSales:    900000,
		PurchaseRate:  33.333,
		LaborRate:     28,
		ProfitMargin:  12.5,
		AverageTicket: 2400,
	}
	target := Target{
		MonthlySales:     ptr(1000000),
		MaxPurchaseRate:  ptr(30),
		MaxLaborRate:     ptr(30),
		MinProfitMargin:  ptr(10),
		MinAverageTicket: ptr(2500),
	}
	checks := Evaluate(result, target)
	if len(checks) != 5 {
		t.Fatalf("expected 5 checks got %d", len(checks))
	}

	byMetric := make(map[Metric]Check, len(checks))
	for _, c := range checks {
		byMetric[c.Metric] = c
	}
	if c := byMetric[MetricMonthlySales]; !c.Breached || c.Variance != -100000 || c.VariancePct != -10 {
		t.Fatalf("unexpected sales check %+v", c)
	}
	if c := byMetric[MetricPurchaseRate]; !c.Breached || c.Actual != 33.33 || c.Variance != 3.33 {
		t.Fatalf("unexpected purchase check %+v", c)
	}
	if c := byMetric[MetricLaborRate]; c.Breached {
		t.Fatalf("labor under ceiling should pass %+v", c)
	}
	if c := byMetric[MetricProfitMargin]; c.Breached || c.VariancePct != 25 {
		t.Fatalf("unexpected margin check %+v", c)
	}
	if c := byMetric[MetricAverageTicket]; !c.Breached || c.VariancePct != -4 {
		t.Fatalf("unexpected ticket check %+v", c)
	}
	if Breaches(checks) != 3 {
		t.Fatalf("expected 3 breaches got %d", Breaches(checks))
	}
}

func TestEvaluateOrdersByVariancePct(t *testing.T) {
	result := kpi.KPIResult{TotalSales: 500, LaborRate: 31, ProfitMargin: 6}
	checks := Evaluate(result, Target{
		MonthlySales:    ptr(1000),
		MaxLaborRate:    ptr(30),
		MinProfitMargin: ptr(10),
	})
	want := []Metric{MetricMonthlySales, MetricProfitMargin, MetricLaborRate}
	for i, m := range want {
		if checks[i].Metric != m {
			t.Fatalf("position %d: expected %s got %s", i, m, checks[i].Metric)
		}
	}
}

func TestEvaluateZeroTargetHasNoPct(t *testing.T) {
	checks := Evaluate(kpi.KPIResult{ProfitMargin: -3}, Target{MinProfitMargin: ptr(0)})
	if len(checks) != 1 {
		t.Fatalf("expected one check got %d", len(checks))
	}
	if checks[0].VariancePct != 0 || !checks[0].Breached {
		t.Fatalf("unexpected check %+v", checks[0])
	}
}
