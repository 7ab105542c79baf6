package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/storepulse/storepulse/internal/dashboard"
	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/targets"
)

func sampleSummary() dashboard.Summary {
	return dashboard.Summary{
		Filter: dashboard.Filter{
			StoreID: "s1",
			From:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			To:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		KPI: kpi.KPIResult{
			TotalSales:    300000,
			PurchaseTotal: 60000,
			AverageTicket: 2308,
			ReportCount:   1,
			SalesGrowth:   25,
		},
		Checks: []targets.Check{
			{Metric: targets.MetricLaborRate, Actual: 6.67, Target: 5, Variance: 1.67, VariancePct: 33.4, Breached: true},
		},
		EffectiveEnd: "2025-03-15",
	}
}

func TestWriteKPICSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteKPICSV(buf, sampleSummary()); err != nil {
		t.Fatalf("kpi csv error: %v", err)
	}
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}

	values := map[string]string{}
	for _, rec := range records {
		if len(rec) >= 2 {
			values[rec[0]] = rec[1]
		}
	}
	if values["Total Sales"] != "300000.00" {
		t.Fatalf("unexpected total sales %q", values["Total Sales"])
	}
	if values["Sales Growth %"] != "25.00" {
		t.Fatalf("unexpected growth %q", values["Sales Growth %"])
	}
	if values["labor_rate"] != "6.67" {
		t.Fatalf("expected labor_rate check row, got %q", values["labor_rate"])
	}
	// the blank separator line is skipped by the reader
	if want := 4 + len(metricRows(sampleSummary())) + 2; len(records) != want {
		t.Fatalf("expected %d rows got %d", want, len(records))
	}
}

func TestWriteKPIXLSX(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteKPIXLSX(buf, sampleSummary()); err != nil {
		t.Fatalf("kpi xlsx error: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(kpiSheet)
	if err != nil {
		t.Fatalf("read kpi sheet: %v", err)
	}
	if len(rows) != 4+len(metricRows(sampleSummary())) {
		t.Fatalf("unexpected kpi row count %d", len(rows))
	}
	if rows[4][0] != "Total Sales" {
		t.Fatalf("unexpected first metric %q", rows[4][0])
	}
	raw, err := f.GetCellValue(kpiSheet, "B5", excelize.Options{RawCellValue: true})
	if err != nil || raw != "300000" {
		t.Fatalf("unexpected raw total sales %q (%v)", raw, err)
	}

	checks, err := f.GetRows(targetSheet)
	if err != nil {
		t.Fatalf("read targets sheet: %v", err)
	}
	if len(checks) != 2 || checks[1][0] != "labor_rate" {
		t.Fatalf("unexpected targets sheet %v", checks)
	}
}

func TestWriteKPIXLSXWithoutChecks(t *testing.T) {
	s := sampleSummary()
	s.Checks = nil
	buf := &bytes.Buffer{}
	if err := WriteKPIXLSX(buf, s); err != nil {
		t.Fatalf("kpi xlsx error: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	if idx, _ := f.GetSheetIndex(targetSheet); idx != -1 {
		t.Fatalf("expected no targets sheet")
	}
}
