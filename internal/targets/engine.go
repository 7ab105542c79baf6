package targets

import (
	"math"
	"sort"

	"github.com/storepulse/storepulse/internal/kpi"
)

type goal struct {
	metric  Metric
	actual  float64
	target  *float64
	ceiling bool
}

// Evaluate compares result with every configured goal in target. Rows are
// ordered by the magnitude of their percentage variance, largest first.
func Evaluate(result kpi.KPIResult, target Target) []Check {
	goals := []goal{
		{metric: MetricMonthlySales, actual: result.TotalSales, target: target.MonthlySales},
		{metric: MetricPurchaseRate, actual: result.PurchaseRate, target: target.MaxPurchaseRate, ceiling: true},
		{metric: MetricLaborRate, actual: result.LaborRate, target: target.MaxLaborRate, ceiling: true},
		{metric: MetricPrimeCostRate, actual: result.PrimeCostRate, target: target.MaxPrimeCostRate, ceiling: true},
		{metric: MetricProfitMargin, actual: result.ProfitMargin, target: target.MinProfitMargin},
		{metric: MetricAverageTicket, actual: result.AverageTicket, target: target.MinAverageTicket},
	}

	checks := make([]Check, 0, len(goals))
	for _, g := range goals {
		if g.target == nil {
			continue
		}
		c := Check{Metric: g.metric, Actual: round2(g.actual), Target: round2(*g.target)}
		c.Variance = round2(c.Actual - c.Target)
		if c.Target != 0 {
			c.VariancePct = round2((c.Variance / math.Abs(c.Target)) * 100)
		}
		if g.ceiling {
			c.Breached = c.Actual > c.Target
		} else {
			c.Breached = c.Actual < c.Target
		}
		checks = append(checks, c)
	}
	sort.SliceStable(checks, func(i, j int) bool {
		return math.Abs(checks[i].VariancePct) > math.Abs(checks[j].VariancePct)
	})
	return checks
}

// Breaches counts the checks that missed their target.
func Breaches(checks []Check) int {
	n := 0
	for _, c := range checks {
		if c.Breached {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
