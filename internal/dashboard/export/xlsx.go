package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/storepulse/storepulse/internal/dashboard"
)

const (
	kpiSheet    = "KPI"
	targetSheet = "Targets"
)

// WriteKPIXLSX writes a workbook with a KPI sheet and, when targets are set, a
// Targets sheet.
func WriteKPIXLSX(w io.Writer, s dashboard.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", kpiSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Store", s.Filter.StoreID},
		{"Period", period(s)},
		{"Effective End", s.EffectiveEnd},
	}
	for _, r := range metricRows(s) {
		rows = append(rows, []any{r.Label, r.Value})
	}
	if err := writeRows(f, kpiSheet, rows); err != nil {
		return err
	}
	if err := f.SetRowStyle(kpiSheet, 1, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(kpiSheet, "B5", fmt.Sprintf("B%d", len(rows)), number); err != nil {
		return err
	}
	if err := f.SetColWidth(kpiSheet, "A", "A", 24); err != nil {
		return err
	}

	if len(s.Checks) > 0 {
		if _, err := f.NewSheet(targetSheet); err != nil {
			return err
		}
		checks := [][]any{{"Metric", "Actual", "Target", "Variance", "Variance %", "Breached"}}
		for _, c := range s.Checks {
			checks = append(checks, []any{string(c.Metric), c.Actual, c.Target, c.Variance, c.VariancePct, c.Breached})
		}
		if err := writeRows(f, targetSheet, checks); err != nil {
			return err
		}
		if err := f.SetRowStyle(targetSheet, 1, 1, header); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, values := range rows {
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
