package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/validate"
	"github.com/storepulse/storepulse/internal/reports"
)

// KPIOptions configures an offline engine run.
type KPIOptions struct {
	Input      string
	Previous   string
	Baseline   string
	Today      string
	End        string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
	// Now supplies "today" when Today is empty.
	Now func() time.Time
}

// KPICommand runs the KPI engine over report files and prints the result.
// It returns the process exit code.
func KPICommand(opts KPIOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.Input) == "" {
		fmt.Fprintln(opts.Stderr, "kpi: --input is required")
		return 1
	}

	in, err := buildInput(opts)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "kpi: %v\n", err)
		return 1
	}
	result := kpi.Compute(in)

	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(opts.Stderr, "kpi: %v\n", err)
			return 1
		}
		return 0
	}
	renderKPIHuman(opts.Stdout, result)
	return 0
}

func buildInput(opts KPIOptions) (kpi.Input, error) {
	var in kpi.Input
	v := validate.New()

	records, err := loadRecords(v, opts.Input)
	if err != nil {
		return in, err
	}
	in.Records = records

	if opts.Previous != "" {
		prev, err := loadRecords(v, opts.Previous)
		if err != nil {
			return in, err
		}
		in.PreviousRecords = prev
	}
	if opts.Baseline != "" {
		var base kpi.ExpenseBaseline
		if err := readJSON(opts.Baseline, &base); err != nil {
			return in, err
		}
		in.Baseline = &base
	}

	now := opts.Now()
	in.Today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if opts.Today != "" {
		t, err := time.Parse(reports.DateLayout, opts.Today)
		if err != nil {
			return in, fmt.Errorf("invalid --today %q (expected YYYY-MM-DD)", opts.Today)
		}
		in.Today = t
	}
	if opts.End != "" {
		t, err := time.Parse(reports.DateLayout, opts.End)
		if err != nil {
			return in, fmt.Errorf("invalid --end %q (expected YYYY-MM-DD)", opts.End)
		}
		in.RangeEnd = &t
	}
	return in, nil
}

// loadRecords reads a JSON array of report rows in the API submission format.
func loadRecords(v *validate.Validator, path string) ([]kpi.ReportRecord, error) {
	var rows []reports.SubmitRequest
	if err := readJSON(path, &rows); err != nil {
		return nil, err
	}
	out := make([]kpi.ReportRecord, 0, len(rows))
	for i, row := range rows {
		if err := v.Struct(row); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i, err)
		}
		rec, err := row.Record()
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func readJSON(path string, dest any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty file", path)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func renderKPIHuman(out io.Writer, r kpi.KPIResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	rows := []struct {
		label string
		value string
	}{
		{"Total sales", money(r.TotalSales)},
		{"Total expenses", money(r.TotalExpenses)},
		{"Gross profit", money(r.GrossProfit)},
		{"Operating profit", money(r.OperatingProfit)},
		{"Purchase total", money(r.PurchaseTotal)},
		{"Labor total", money(r.LaborTotal)},
		{"Prime cost", money(r.PrimeCost)},
		{"Purchase rate", pct(r.PurchaseRate)},
		{"Labor rate", pct(r.LaborRate)},
		{"Prime cost rate", pct(r.PrimeCostRate)},
		{"Profit margin", pct(r.ProfitMargin)},
		{"Customers", fmt.Sprintf("%d", r.TotalCustomers)},
		{"Average ticket", money(r.AverageTicket)},
		{"Operating days", fmt.Sprintf("%d", r.ReportCount)},
		{"Average daily sales", money(r.AverageDailySales)},
		{"Lunch sales", money(r.LunchSales)},
		{"Lunch ticket", money(r.LunchAverageTicket)},
		{"Dinner sales", money(r.DinnerSales)},
		{"Dinner ticket", money(r.DinnerAverageTicket)},
		{"Sales growth", pct(r.SalesGrowth)},
		{"Profit growth", pct(r.ProfitGrowth)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.label, row.value)
	}
	_ = tw.Flush()
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v) }
