package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/jobs"
)

type stubEnqueuer struct {
	tasks  []*asynq.Task
	closed bool
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error {
	s.closed = true
	return nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func (s stubInspector) Close() error { return nil }

func TestTriggerKPIWarmup(t *testing.T) {
	enq := &stubEnqueuer{}
	c := NewJobsCLIWith(enq, stubInspector{})

	info, err := c.Trigger(context.Background(), jobs.TaskKPIWarmup, "s1", "2025-03-10")
	require.NoError(t, err)
	require.Equal(t, jobs.TaskKPIWarmup, info.Type)
	require.Len(t, enq.tasks, 1)

	var payload jobs.KPIWarmupPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, "s1", payload.StoreID)
	require.Equal(t, "2025-03-10", payload.Date)

	require.NoError(t, c.Close())
	require.True(t, enq.closed)
}

func TestTriggerRejectsUnknownJobAndBadDate(t *testing.T) {
	enq := &stubEnqueuer{}
	c := NewJobsCLIWith(enq, stubInspector{})

	_, err := c.Trigger(context.Background(), "gl:integrity", "", "")
	require.Error(t, err)

	_, err = c.Trigger(context.Background(), jobs.TaskKPIWarmup, "", "10-03-2025")
	require.Error(t, err)
	require.Empty(t, enq.tasks)
}

func TestInspectQueue(t *testing.T) {
	c := NewJobsCLIWith(&stubEnqueuer{}, stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Retry: 1, Failed: 4}})
	stats, err := c.InspectQueue(context.Background())
	require.NoError(t, err)
	require.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 2, Retry: 1, Failed: 4}, stats)

	c = NewJobsCLIWith(&stubEnqueuer{}, stubInspector{err: errors.New("redis down")})
	_, err = c.InspectQueue(context.Background())
	require.Error(t, err)
}
