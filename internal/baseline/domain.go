// Package baseline stores the reference costs that stand in for expense
// families a day did not report, plus monthly expense overrides.
package baseline

import (
	"fmt"
	"time"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// MonthLayout formats the month key of a monthly expense.
const MonthLayout = "2006-01"

// ErrNotFound is returned when a store has no stored baseline or month.
var ErrNotFound = fmt.Errorf("baseline: %w", httpx.ErrNotFound)

// Baseline is the stored per-day reference cost of a store.
type Baseline struct {
	StoreID string `json:"store_id"`
	kpi.ExpenseBaseline
	UpdatedAt time.Time `json:"updated_at"`
}

// MonthlyExpense is a whole-month cost declaration. OpenDays is the number of
// days the store planned to trade that month.
type MonthlyExpense struct {
	StoreID       string    `json:"store_id"`
	Month         string    `json:"month"`
	LaborCost     float64   `json:"labor_cost"`
	Utilities     float64   `json:"utilities"`
	Rent          float64   `json:"rent"`
	Consumables   float64   `json:"consumables"`
	Promotion     float64   `json:"promotion"`
	Cleaning      float64   `json:"cleaning"`
	Misc          float64   `json:"misc"`
	Communication float64   `json:"communication"`
	Others        float64   `json:"others"`
	OpenDays      int       `json:"open_days"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BaselineRequest is the payload accepted when saving a per-day baseline.
type BaselineRequest struct {
	LaborCost     float64 `json:"labor_cost" validate:"gte=0"`
	Utilities     float64 `json:"utilities" validate:"gte=0"`
	Rent          float64 `json:"rent" validate:"gte=0"`
	Consumables   float64 `json:"consumables" validate:"gte=0"`
	Promotion     float64 `json:"promotion" validate:"gte=0"`
	Cleaning      float64 `json:"cleaning" validate:"gte=0"`
	Misc          float64 `json:"misc" validate:"gte=0"`
	Communication float64 `json:"communication" validate:"gte=0"`
	Others        float64 `json:"others" validate:"gte=0"`
}

// MonthlyRequest is the payload accepted when saving a monthly expense.
type MonthlyRequest struct {
	LaborCost     float64 `json:"labor_cost" validate:"gte=0"`
	Utilities     float64 `json:"utilities" validate:"gte=0"`
	Rent          float64 `json:"rent" validate:"gte=0"`
	Consumables   float64 `json:"consumables" validate:"gte=0"`
	Promotion     float64 `json:"promotion" validate:"gte=0"`
	Cleaning      float64 `json:"cleaning" validate:"gte=0"`
	Misc          float64 `json:"misc" validate:"gte=0"`
	Communication float64 `json:"communication" validate:"gte=0"`
	Others        float64 `json:"others" validate:"gte=0"`
	OpenDays      int     `json:"open_days" validate:"gte=0,lte=31"`
}

type monthKey struct {
	Month string `json:"month" validate:"required,datetime=2006-01"`
}
