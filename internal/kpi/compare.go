package kpi

// Growth holds period-over-period percentage deltas.
type Growth struct {
	SalesGrowth  float64 `json:"sales_growth"`
	ProfitGrowth float64 `json:"profit_growth"`
}

// RawTotals sums sales and profit straight from report rows, without day
// grouping or baseline substitution.
func RawTotals(records []ReportRecord) (sales, profit float64) {
	for _, rec := range records {
		sales += rec.Sales
		profit += rec.Sales - rec.TotalExpenses()
	}
	return sales, profit
}

// CompareGrowth measures the current summary against the previous period's raw
// rows. A non-positive previous total yields 0 growth, so a prior loss never
// becomes a divisor.
func CompareGrowth(current KPIResult, previous []ReportRecord) Growth {
	if len(previous) == 0 {
		return Growth{}
	}
	prevSales, prevProfit := RawTotals(previous)

	var g Growth
	if prevSales > 0 {
		g.SalesGrowth = (current.TotalSales - prevSales) / prevSales * 100
	}
	if prevProfit > 0 {
		g.ProfitGrowth = (current.OperatingProfit - prevProfit) / prevProfit * 100
	}
	return g
}
