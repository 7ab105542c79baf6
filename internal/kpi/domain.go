package kpi

import "time"

// OperationType identifies which part of the operating day a report covers.
type OperationType string

const (
	// OperationLunch covers the lunch shift.
	OperationLunch OperationType = "lunch"
	// OperationDinner covers the dinner shift.
	OperationDinner OperationType = "dinner"
	// OperationFullDay is a single entry covering the whole day.
	OperationFullDay OperationType = "full_day"
)

// Valid reports whether the operation type is one of the known shifts.
func (o OperationType) Valid() bool {
	switch o {
	case OperationLunch, OperationDinner, OperationFullDay:
		return true
	}
	return false
}

// ReportRecord is one submitted shift report. Amounts are taken as-is, negative
// correction entries included.
type ReportRecord struct {
	Date          time.Time     `json:"date"`
	StoreID       string        `json:"store_id"`
	OperationType OperationType `json:"operation_type"`
	Sales         float64       `json:"sales"`
	Customers     int           `json:"customers"`
	Purchase      float64       `json:"purchase"`
	LaborCost     float64       `json:"labor_cost"`
	Utilities     float64       `json:"utilities"`
	Rent          float64       `json:"rent"`
	Consumables   float64       `json:"consumables"`
	Promotion     float64       `json:"promotion"`
	Cleaning      float64       `json:"cleaning"`
	Misc          float64       `json:"misc"`
	Communication float64       `json:"communication"`
	Others        float64       `json:"others"`
}

// OtherExpenses sums every non-purchase, non-labor category of the row.
func (r ReportRecord) OtherExpenses() float64 {
	return r.Utilities + r.Rent + r.Consumables + r.Promotion + r.Cleaning + r.Misc + r.Communication + r.Others
}

// TotalExpenses sums every expense column of the row.
func (r ReportRecord) TotalExpenses() float64 {
	return r.Purchase + r.LaborCost + r.OtherExpenses()
}

// ExpenseBaseline holds per-day reference costs used for days that reported
// nothing in a given expense family.
type ExpenseBaseline struct {
	LaborCost     float64 `json:"labor_cost"`
	Utilities     float64 `json:"utilities"`
	Rent          float64 `json:"rent"`
	Consumables   float64 `json:"consumables"`
	Promotion     float64 `json:"promotion"`
	Cleaning      float64 `json:"cleaning"`
	Misc          float64 `json:"misc"`
	Communication float64 `json:"communication"`
	Others        float64 `json:"others"`
}

// OtherTotal sums the non-labor baseline categories.
func (b ExpenseBaseline) OtherTotal() float64 {
	return b.Utilities + b.Rent + b.Consumables + b.Promotion + b.Cleaning + b.Misc + b.Communication + b.Others
}

// KPIResult is the financial summary produced for one batch of reports.
type KPIResult struct {
	TotalSales      float64 `json:"total_sales"`
	TotalExpenses   float64 `json:"total_expenses"`
	GrossProfit     float64 `json:"gross_profit"`
	OperatingProfit float64 `json:"operating_profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	PurchaseTotal   float64 `json:"purchase_total"`
	LaborTotal      float64 `json:"labor_total"`
	PurchaseRate    float64 `json:"purchase_rate"`
	LaborRate       float64 `json:"labor_rate"`
	PrimeCost       float64 `json:"prime_cost"`
	PrimeCostRate   float64 `json:"prime_cost_rate"`

	ReportCount       int     `json:"report_count"`
	AverageDailySales float64 `json:"average_daily_sales"`
	TotalCustomers    int     `json:"total_customers"`
	AverageTicket     float64 `json:"average_ticket"`

	LunchSales          float64 `json:"lunch_sales"`
	DinnerSales         float64 `json:"dinner_sales"`
	LunchCustomers      int     `json:"lunch_customers"`
	DinnerCustomers     int     `json:"dinner_customers"`
	LunchReportCount    int     `json:"lunch_report_count"`
	DinnerReportCount   int     `json:"dinner_report_count"`
	LunchAverageTicket  float64 `json:"lunch_average_ticket"`
	DinnerAverageTicket float64 `json:"dinner_average_ticket"`

	SalesGrowth  float64 `json:"sales_growth"`
	ProfitGrowth float64 `json:"profit_growth"`
}
