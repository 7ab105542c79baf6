// Package reports accepts and stores the per-shift daily reports stores submit.
package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

var (
	ErrNotFound  = fmt.Errorf("report: %w", httpx.ErrNotFound)
	ErrDuplicate = fmt.Errorf("report already submitted for this store, date and shift: %w", httpx.ErrDuplicate)
)

// Report is a stored report row.
type Report struct {
	ID uuid.UUID `json:"id"`
	kpi.ReportRecord
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest is the payload of one report row. Amounts may be negative to
// record corrections.
type SubmitRequest struct {
	StoreID       string  `json:"store_id" validate:"required,max=64"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	OperationType string  `json:"operation_type" validate:"required,oneof=lunch dinner full_day"`
	Sales         float64 `json:"sales"`
	Customers     int     `json:"customers" validate:"gte=0"`
	Purchase      float64 `json:"purchase"`
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

// BatchRequest submits every shift of a day at once.
type BatchRequest struct {
	Reports []SubmitRequest `json:"reports" validate:"required,min=1,max=31,dive"`
}

// Record converts a validated request into an engine record.
func (r SubmitRequest) Record() (kpi.ReportRecord, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return kpi.ReportRecord{}, fmt.Errorf("parse date: %w", err)
	}
	return kpi.ReportRecord{
		Date:          date,
		StoreID:       r.StoreID,
		OperationType: kpi.OperationType(r.OperationType),
		Sales:         r.Sales,
		Customers:     r.Customers,
		Purchase:      r.Purchase,
		LaborCost:     r.LaborCost,
		Utilities:     r.Utilities,
		Rent:          r.Rent,
		Consumables:   r.Consumables,
		Promotion:     r.Promotion,
		Cleaning:      r.Cleaning,
		Misc:          r.Misc,
		Communication: r.Communication,
		Others:        r.Others,
	}, nil
}

// ListFilter narrows a report listing. Zero times leave that side open.
type ListFilter struct {
	StoreID string
	From    time.Time
	To      time.Time
	Limit   int
}

// Records strips storage metadata from rows.
func Records(rows []Report) []kpi.ReportRecord {
	out := make([]kpi.ReportRecord, len(rows))
	for i, r := range rows {
		out[i] = r.ReportRecord
	}
	return out
}
