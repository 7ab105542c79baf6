package kpi

import "time"

// ResolvedExpense is the labor and other-expense figure used for one day.
type ResolvedExpense struct {
	LaborCost     float64
	OtherExpenses float64
}

// EffectiveEndDate returns the earlier of today and the optional range end,
// truncated to the calendar day.
func EffectiveEndDate(today time.Time, rangeEnd *time.Time) time.Time {
	end := dayOf(today)
	if rangeEnd != nil {
		if candidate := dayOf(*rangeEnd); candidate.Before(end) {
			end = candidate
		}
	}
	return end
}

// IsFutureDate compares calendar days only.
func IsFutureDate(day, effectiveEnd time.Time) bool {
	return dayOf(day).After(dayOf(effectiveEnd))
}

// ResolveExpenses picks reported or baseline expenses for a day. Reported
// figures always win. Unreported past days fall back to the baseline; days after
// effectiveEnd never receive baseline cost.
func ResolveExpenses(group *DailyGroup, baseline *ExpenseBaseline, effectiveEnd time.Time) ResolvedExpense {
	if group == nil {
		return ResolvedExpense{}
	}
	future := IsFutureDate(group.Date, effectiveEnd)

	var out ResolvedExpense
	switch {
	case group.HasLaborCost:
		out.LaborCost = group.ReportedLaborCost
	case future:
		// nothing has been spent yet
	case baseline != nil:
		out.LaborCost = baseline.LaborCost
	}

	switch {
	case group.HasOtherExpenses:
		out.OtherExpenses = group.ReportedOtherExpenses
	case future:
	case baseline != nil:
		out.OtherExpenses = baseline.OtherTotal()
	}
	return out
}

// ResolveAll resolves every group against the same baseline and end date.
func ResolveAll(groups []*DailyGroup, baseline *ExpenseBaseline, effectiveEnd time.Time) map[DayKey]ResolvedExpense {
	resolved := make(map[DayKey]ResolvedExpense, len(groups))
	for _, g := range groups {
		resolved[g.Key] = ResolveExpenses(g, baseline, effectiveEnd)
	}
	return resolved
}
