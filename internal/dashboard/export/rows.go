// Package export renders dashboard summaries as downloadable files.
package export

import (
	"strconv"

	"github.com/storepulse/storepulse/internal/dashboard"
)

// row is one labelled figure of a summary.
type row struct {
	Label string
	Value float64
}

func metricRows(s dashboard.Summary) []row {
	k := s.KPI
	return []row{
		{"Total Sales", k.TotalSales},
		{"Total Expenses", k.TotalExpenses},
		{"Gross Profit", k.GrossProfit},
		{"Operating Profit", k.OperatingProfit},
		{"Profit Margin %", k.ProfitMargin},
		{"Purchase Total", k.PurchaseTotal},
		{"Labor Total", k.LaborTotal},
		{"Purchase Rate %", k.PurchaseRate},
		{"Labor Rate %", k.LaborRate},
		{"Prime Cost", k.PrimeCost},
		{"Prime Cost Rate %", k.PrimeCostRate},
		{"Operating Days", float64(k.ReportCount)},
		{"Average Daily Sales", k.AverageDailySales},
		{"Total Customers", float64(k.TotalCustomers)},
		{"Average Ticket", k.AverageTicket},
		{"Lunch Sales", k.LunchSales},
		{"Dinner Sales", k.DinnerSales},
		{"Lunch Customers", float64(k.LunchCustomers)},
		{"Dinner Customers", float64(k.DinnerCustomers)},
		{"Lunch Days", float64(k.LunchReportCount)},
		{"Dinner Days", float64(k.DinnerReportCount)},
		{"Lunch Average Ticket", k.LunchAverageTicket},
		{"Dinner Average Ticket", k.DinnerAverageTicket},
		{"Sales Growth %", k.SalesGrowth},
		{"Profit Growth %", k.ProfitGrowth},
	}
}

func period(s dashboard.Summary) string {
	return s.Filter.From.Format(dashboard.DateLayout) + " to " + s.Filter.To.Format(dashboard.DateLayout)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
