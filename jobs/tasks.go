package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskKPIWarmup precomputes month-to-date KPI summaries.
	TaskKPIWarmup = "kpi:warmup"
	// KPIWarmupCron runs the warmup shortly after midnight UTC.
	KPIWarmupCron = "15 1 * * *"
)

// KPIWarmupPayload scopes a warmup run. An empty StoreID warms every store
// that reported this month; an empty Date means today.
type KPIWarmupPayload struct {
	StoreID string `json:"store_id,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Day parses Date, returning ok=false when it is unset.
func (p KPIWarmupPayload) Day() (time.Time, bool, error) {
	if p.Date == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("kpi warmup: date %q: %w", p.Date, err)
	}
	return t, true, nil
}

// NewKPIWarmupTask constructs a warmup task.
func NewKPIWarmupTask(payload KPIWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskKPIWarmup, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}
