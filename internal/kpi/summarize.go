package kpi

import "math"

// Summarize derives totals, rates and shift breakdowns from grouped days and
// their resolved expenses. Growth fields are left at zero.
func Summarize(groups []*DailyGroup, resolved map[DayKey]ResolvedExpense) KPIResult {
	var out KPIResult
	var otherTotal float64
	for _, g := range groups {
		exp := resolved[g.Key]

		out.TotalSales += g.Sales
		out.PurchaseTotal += g.Purchase
		out.LaborTotal += exp.LaborCost
		otherTotal += exp.OtherExpenses
		out.TotalCustomers += g.Customers

		out.LunchSales += g.LunchSales
		out.LunchCustomers += g.LunchCustomers
		out.DinnerSales += g.DinnerSales
		out.DinnerCustomers += g.DinnerCustomers
		if g.LunchSales > 0 {
			out.LunchReportCount++
		}
		if g.DinnerSales > 0 {
			out.DinnerReportCount++
		}
	}

	out.TotalExpenses = out.PurchaseTotal + out.LaborTotal + otherTotal
	out.GrossProfit = out.TotalSales - out.PurchaseTotal
	out.OperatingProfit = out.TotalSales - out.TotalExpenses
	out.PrimeCost = out.PurchaseTotal + out.LaborTotal

	out.ProfitMargin = Rate(out.OperatingProfit, out.TotalSales)
	out.PurchaseRate = Rate(out.PurchaseTotal, out.TotalSales)
	out.LaborRate = Rate(out.LaborTotal, out.TotalSales)
	out.PrimeCostRate = Rate(out.PrimeCost, out.TotalSales)

	out.ReportCount = len(groups)
	if out.ReportCount > 0 {
		out.AverageDailySales = out.TotalSales / float64(out.ReportCount)
	}

	out.AverageTicket = Ticket(out.TotalSales, out.TotalCustomers)
	out.LunchAverageTicket = Ticket(out.LunchSales, out.LunchCustomers)
	out.DinnerAverageTicket = Ticket(out.DinnerSales, out.DinnerCustomers)
	return out
}

// Rate returns part as a percentage of whole, or 0 when whole is not positive.
func Rate(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}

// Ticket returns the average spend per customer rounded to a whole currency
// unit, or 0 without customers.
func Ticket(sales float64, customers int) float64 {
	if customers > 0 {
		return RoundHalfUp(sales / float64(customers))
	}
	return 0
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
