// Package targets holds per-store KPI goals and scores a KPI result against them.
package targets

import (
	"fmt"
	"time"

	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// ErrNotFound is returned when a store has no targets configured.
var ErrNotFound = fmt.Errorf("targets: %w", httpx.ErrNotFound)

// Metric names a KPI a target can be set on.
type Metric string

const (
	MetricMonthlySales  Metric = "monthly_sales"
	MetricPurchaseRate  Metric = "purchase_rate"
	MetricLaborRate     Metric = "labor_rate"
	MetricPrimeCostRate Metric = "prime_cost_rate"
	MetricProfitMargin  Metric = "profit_margin"
	MetricAverageTicket Metric = "average_ticket"
)

// Target is the goal set of a store. Nil fields are not evaluated.
type Target struct {
	StoreID          string    `json:"store_id"`
	MonthlySales     *float64  `json:"monthly_sales,omitempty"`
	MaxPurchaseRate  *float64  `json:"max_purchase_rate,omitempty"`
	MaxLaborRate     *float64  `json:"max_labor_rate,omitempty"`
	MaxPrimeCostRate *float64  `json:"max_prime_cost_rate,omitempty"`
	MinProfitMargin  *float64  `json:"min_profit_margin,omitempty"`
	MinAverageTicket *float64  `json:"min_average_ticket,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Request is the payload accepted when saving targets.
type Request struct {
	MonthlySales     *float64 `json:"monthly_sales" validate:"omitempty,gte=0"`
	MaxPurchaseRate  *float64 `json:"max_purchase_rate" validate:"omitempty,gte=0,lte=100"`
	MaxLaborRate     *float64 `json:"max_labor_rate" validate:"omitempty,gte=0,lte=100"`
	MaxPrimeCostRate *float64 `json:"max_prime_cost_rate" validate:"omitempty,gte=0,lte=100"`
	MinProfitMargin  *float64 `json:"min_profit_margin" validate:"omitempty,gte=-100,lte=100"`
	MinAverageTicket *float64 `json:"min_average_ticket" validate:"omitempty,gte=0"`
}

// Check is the evaluation of one metric against its target.
type Check struct {
	Metric      Metric  `json:"metric"`
	Actual      float64 `json:"actual"`
	Target      float64 `json:"target"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variance_pct"`
	Breached    bool    `json:"breached"`
}
