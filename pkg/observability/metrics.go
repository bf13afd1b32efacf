package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dayplanner"

// PlannerMetrics records planning and outbox activity in Prometheus
// collectors.
type PlannerMetrics struct {
	outboxPublished *prometheus.CounterVec
	outboxFailed    *prometheus.CounterVec
	planRuns        prometheus.Counter
	planDuration    prometheus.Histogram
	planTasks       *prometheus.CounterVec
	events          *prometheus.CounterVec
	taskFailures    *prometheus.CounterVec
	placedSeconds   prometheus.Counter
}

// NewPlannerMetrics registers the collectors on reg, reusing collectors that
// are already registered. A nil reg uses the default registerer.
func NewPlannerMetrics(reg prometheus.Registerer) (*PlannerMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PlannerMetrics{
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox messages published, by routing key.",
		}, []string{"routing_key"}),
		outboxFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failed_total",
			Help:      "Outbox publish failures, by routing key and whether the message was dead-lettered.",
		}, []string{"routing_key", "dead_lettered"}),
		planRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_runs_total",
			Help:      "Completed allocation runs.",
		}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Wall time of an allocation run including persistence.",
			Buckets:   prometheus.DefBuckets,
		}),
		planTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_tasks_total",
			Help:      "Tasks processed by allocation runs, by outcome.",
		}, []string{"status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Planning events seen by the metrics subscriber.",
		}, []string{"routing_key"}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_failures_total",
			Help:      "Tasks the allocator could not place, by reason.",
		}, []string{"reason"}),
		placedSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placed_seconds_total",
			Help:      "Time placed onto timelines.",
		}),
	}

	var err error
	if m.outboxPublished, err = register(reg, m.outboxPublished); err != nil {
		return nil, err
	}
	if m.outboxFailed, err = register(reg, m.outboxFailed); err != nil {
		return nil, err
	}
	if m.planRuns, err = register(reg, m.planRuns); err != nil {
		return nil, err
	}
	if m.planDuration, err = register(reg, m.planDuration); err != nil {
		return nil, err
	}
	if m.planTasks, err = register(reg, m.planTasks); err != nil {
		return nil, err
	}
	if m.events, err = register(reg, m.events); err != nil {
		return nil, err
	}
	if m.taskFailures, err = register(reg, m.taskFailures); err != nil {
		return nil, err
	}
	if m.placedSeconds, err = register(reg, m.placedSeconds); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *PlannerMetrics) OutboxPublished(routingKey string) {
	m.outboxPublished.WithLabelValues(routingKey).Inc()
}

func (m *PlannerMetrics) OutboxFailed(routingKey string, deadLettered bool) {
	m.outboxFailed.WithLabelValues(routingKey, strconv.FormatBool(deadLettered)).Inc()
}

// PlanCompleted records one allocation run.
func (m *PlannerMetrics) PlanCompleted(scheduled, failed int, elapsed time.Duration) {
	m.planRuns.Inc()
	m.planDuration.Observe(elapsed.Seconds())
	m.planTasks.WithLabelValues("scheduled").Add(float64(scheduled))
	m.planTasks.WithLabelValues("failed").Add(float64(failed))
}

func (m *PlannerMetrics) EventConsumed(routingKey string) {
	m.events.WithLabelValues(routingKey).Inc()
}

func (m *PlannerMetrics) TaskFailed(reason string) {
	m.taskFailures.WithLabelValues(reason).Inc()
}

func (m *PlannerMetrics) TimePlaced(d time.Duration) {
	if d > 0 {
		m.placedSeconds.Add(d.Seconds())
	}
}
