// Package kpi turns daily store reports into a financial KPI summary.
//
// The package is a pure computation: it performs no I/O, holds no state and
// never reads the system clock. Callers pass "today" explicitly so the rule that
// keeps baseline costs off future days stays deterministic.
package kpi

import "time"

// Input bundles everything a computation depends on.
type Input struct {
	Records         []ReportRecord
	PreviousRecords []ReportRecord
	Baseline        *ExpenseBaseline
	Today           time.Time
	RangeEnd        *time.Time
}

// Compute groups the records by operating day, resolves expenses, summarises
// totals and rates, then fills growth against the previous records.
func Compute(in Input) KPIResult {
	groups := SortedGroups(GroupDaily(in.Records))
	end := EffectiveEndDate(in.Today, in.RangeEnd)
	resolved := ResolveAll(groups, in.Baseline, end)

	result := Summarize(groups, resolved)
	growth := CompareGrowth(result, in.PreviousRecords)
	result.SalesGrowth = growth.SalesGrowth
	result.ProfitGrowth = growth.ProfitGrowth
	return result
}
