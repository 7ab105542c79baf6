package baseline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/kpi"
)

// DaysIn returns the number of calendar days in the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PerDay spreads a monthly expense evenly over days, rounded to cents.
func PerDay(monthly MonthlyExpense, days int) kpi.ExpenseBaseline {
	if days <= 0 {
		return kpi.ExpenseBaseline{}
	}
	d := decimal.NewFromInt(int64(days))
	split := func(v float64) float64 {
		return decimal.NewFromFloat(v).Div(d).Round(2).InexactFloat64()
	}
	return kpi.ExpenseBaseline{
		LaborCost:     split(monthly.LaborCost),
		Utilities:     split(monthly.Utilities),
		Rent:          split(monthly.Rent),
		Consumables:   split(monthly.Consumables),
		Promotion:     split(monthly.Promotion),
		Cleaning:      split(monthly.Cleaning),
		Misc:          split(monthly.Misc),
		Communication: split(monthly.Communication),
		Others:        split(monthly.Others),
	}
}

// ProrateLabor replaces the labor total of result with the monthly labor cost
// pro-rated to openDays out of monthly.OpenDays, and recomputes the figures
// that depend on it, growth against previous included.
func ProrateLabor(result kpi.KPIResult, monthly MonthlyExpense, openDays int, previous []kpi.ReportRecord) kpi.KPIResult {
	if monthly.OpenDays <= 0 {
		return result
	}
	labor := decimal.NewFromFloat(monthly.LaborCost).
		Mul(decimal.NewFromInt(int64(openDays))).
		Div(decimal.NewFromInt(int64(monthly.OpenDays))).
		Round(2)

	expenses := decimal.NewFromFloat(result.TotalExpenses).
		Sub(decimal.NewFromFloat(result.LaborTotal)).
		Add(labor)

	result.LaborTotal = labor.InexactFloat64()
	result.TotalExpenses = expenses.InexactFloat64()
	result.PrimeCost = result.PurchaseTotal + result.LaborTotal
	result.OperatingProfit = result.TotalSales - result.TotalExpenses
	result.LaborRate = kpi.Rate(result.LaborTotal, result.TotalSales)
	result.PrimeCostRate = kpi.Rate(result.PrimeCost, result.TotalSales)
	result.ProfitMargin = kpi.Rate(result.OperatingProfit, result.TotalSales)

	growth := kpi.CompareGrowth(result, previous)
	result.SalesGrowth = growth.SalesGrowth
	result.ProfitGrowth = growth.ProfitGrowth
	return result
}
