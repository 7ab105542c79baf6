// Package dashboard serves KPI summaries for a store and date range, backed by
// the stored reports, baselines and targets.
package dashboard

import (
	"fmt"
	"time"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/httpx"
	"github.com/storepulse/storepulse/internal/targets"
)

// DateLayout is the query and cache-key format of filter dates.
const DateLayout = "2006-01-02"

// maxRangeDays bounds a single summary window.
const maxRangeDays = 366

// ErrInvalidRange reports an unusable filter window.
var ErrInvalidRange = fmt.Errorf("dashboard: invalid date range: %w", httpx.ErrValidation)

// Filter selects the reports a summary covers. Dates are calendar days,
// inclusive on both ends.
type Filter struct {
	StoreID      string     `json:"store_id"`
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
	CompareFrom  *time.Time `json:"compare_from,omitempty"`
	CompareTo    *time.Time `json:"compare_to,omitempty"`
	ProrateLabor bool       `json:"prorate_labor,omitempty"`
}

// Validate checks the filter window.
func (f Filter) Validate() error {
	if f.StoreID == "" {
		return fmt.Errorf("%w: store is required", ErrInvalidRange)
	}
	if f.From.IsZero() || f.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if f.To.Before(f.From) {
		return fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	if f.To.Sub(f.From) > maxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: window exceeds %d days", ErrInvalidRange, maxRangeDays)
	}
	if (f.CompareFrom == nil) != (f.CompareTo == nil) {
		return fmt.Errorf("%w: compare_from and compare_to go together", ErrInvalidRange)
	}
	if f.CompareFrom != nil && f.CompareTo.Before(*f.CompareFrom) {
		return fmt.Errorf("%w: compare_to is before compare_from", ErrInvalidRange)
	}
	return nil
}

// HasComparison reports whether a previous window was requested.
func (f Filter) HasComparison() bool {
	return f.CompareFrom != nil && f.CompareTo != nil
}

// MonthToDate covers the first of today's month through today, compared with
// the whole previous month.
func MonthToDate(storeID string, today time.Time) Filter {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	prevFrom := first.AddDate(0, -1, 0)
	prevTo := first.AddDate(0, 0, -1)
	return Filter{
		StoreID:     storeID,
		From:        first,
		To:          end,
		CompareFrom: &prevFrom,
		CompareTo:   &prevTo,
	}
}

// Summary is the dashboard payload for one filter.
type Summary struct {
	Filter       Filter          `json:"filter"`
	KPI          kpi.KPIResult   `json:"kpi"`
	Checks       []targets.Check `json:"checks"`
	Breaches     int             `json:"breaches"`
	EffectiveEnd string          `json:"effective_end"`
	ComputedAt   time.Time       `json:"computed_at"`
}
