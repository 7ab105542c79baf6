package kpi

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// DayKey identifies one operating day of one store.
type DayKey struct {
	Date    string
	StoreID string
}

// KeyOf builds the grouping key for a report date and store.
func KeyOf(date time.Time, storeID string) DayKey {
	return DayKey{Date: date.Format(dateLayout), StoreID: storeID}
}

// DailyGroup accumulates the shift rows of one operating day.
type DailyGroup struct {
	Key     DayKey
	Date    time.Time
	StoreID string

	Sales     float64
	Customers int
	Purchase  float64

	LunchSales      float64
	LunchCustomers  int
	DinnerSales     float64
	DinnerCustomers int

	HasLaborCost          bool
	HasOtherExpenses      bool
	ReportedLaborCost     float64
	ReportedOtherExpenses float64
}

// GroupDaily collapses report rows into one group per (date, store).
//
// Sales and customers are summed across shifts. Purchase is a day-level figure
// that may be echoed on every shift row, so the group keeps the largest value
// seen. Full-day rows land in the dinner bucket.
func GroupDaily(records []ReportRecord) map[DayKey]*DailyGroup {
	groups := make(map[DayKey]*DailyGroup, len(records))
	for _, rec := range records {
		key := KeyOf(rec.Date, rec.StoreID)
		group, ok := groups[key]
		if !ok {
			group = &DailyGroup{
				Key:      key,
				Date:     dayOf(rec.Date),
				StoreID:  rec.StoreID,
				Purchase: rec.Purchase,
			}
			groups[key] = group
		} else if rec.Purchase > group.Purchase {
			group.Purchase = rec.Purchase
		}

		group.Sales += rec.Sales
		group.Customers += rec.Customers

		switch rec.OperationType {
		case OperationLunch:
			group.LunchSales += rec.Sales
			group.LunchCustomers += rec.Customers
		case OperationDinner, OperationFullDay:
			group.DinnerSales += rec.Sales
			group.DinnerCustomers += rec.Customers
		}

		if rec.LaborCost > 0 {
			group.HasLaborCost = true
			group.ReportedLaborCost += rec.LaborCost
		}
		if other := rec.OtherExpenses(); other > 0 {
			group.HasOtherExpenses = true
			group.ReportedOtherExpenses += other
		}
	}
	return groups
}

// SortedGroups returns the groups ordered by date, then store.
func SortedGroups(groups map[DayKey]*DailyGroup) []*DailyGroup {
	out := make([]*DailyGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Date == out[j].Key.Date {
			return out[i].Key.StoreID < out[j].Key.StoreID
		}
		return out[i].Key.Date < out[j].Key.Date
	})
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
