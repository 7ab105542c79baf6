package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/storepulse/storepulse/internal/dashboard"
)

// WriteKPICSV serialises a summary as a Metric/Value table followed by the
// target checks.
func WriteKPICSV(w io.Writer, s dashboard.Summary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	head := [][]string{
		{"Store", s.Filter.StoreID},
		{"Period", period(s)},
		{"Effective End", s.EffectiveEnd},
	}
	for _, record := range head {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	for _, r := range metricRows(s) {
		if err := writer.Write([]string{r.Label, formatFloat(r.Value)}); err != nil {
			return err
		}
	}

	if len(s.Checks) > 0 {
		if err := writer.Write(nil); err != nil {
			return err
		}
		if err := writer.Write([]string{"Target Metric", "Actual", "Target", "Variance", "Variance %", "Breached"}); err != nil {
			return err
		}
		for _, c := range s.Checks {
			if err := writer.Write([]string{
				string(c.Metric),
				formatFloat(c.Actual),
				formatFloat(c.Target),
				formatFloat(c.Variance),
				formatFloat(c.VariancePct),
				strconv.FormatBool(c.Breached),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
