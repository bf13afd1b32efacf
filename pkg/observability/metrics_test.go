package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannerMetrics_Outbox(t *testing.T) {
	m, err := NewPlannerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.OutboxPublished("planning.task.placed")
	m.OutboxPublished("planning.task.placed")
	m.OutboxFailed("planning.task.failed", true)

	expected := `
# HELP dayplanner_outbox_published_total Outbox messages published, by routing key.
# TYPE dayplanner_outbox_published_total counter
dayplanner_outbox_published_total{routing_key="planning.task.placed"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(m.outboxPublished, strings.NewReader(expected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboxFailed.WithLabelValues("planning.task.failed", "true")))
}

func TestPlannerMetrics_PlanCompleted(t *testing.T) {
	m, err := NewPlannerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.PlanCompleted(3, 1, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.planRuns))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.planTasks.WithLabelValues("scheduled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planTasks.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.planDuration))
}

func TestPlannerMetrics_Subscriber(t *testing.T) {
	m, err := NewPlannerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.EventConsumed("planning.task.placed")
	m.TaskFailed("NoCapacity")
	m.TimePlaced(90 * time.Minute)
	m.TimePlaced(-time.Minute)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("planning.task.placed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.taskFailures.WithLabelValues("NoCapacity")))
	assert.Equal(t, 5400.0, testutil.ToFloat64(m.placedSeconds))
}

func TestNewPlannerMetrics_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPlannerMetrics(reg)
	require.NoError(t, err)
	second, err := NewPlannerMetrics(reg)
	require.NoError(t, err)

	first.OutboxPublished("k")
	second.OutboxPublished("k")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.outboxPublished.WithLabelValues("k")))
}
