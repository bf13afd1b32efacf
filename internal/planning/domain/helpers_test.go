package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func clock(h, m int) time.Time {
	return time.Date(2024, 1, 15, h, m, 0, 0, time.UTC)
}

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

func newDay(t *testing.T, wake, sleep time.Duration) *domain.DayTimeline {
	t.Helper()
	day, err := domain.NewDayTimeline(monday, domain.DayWindow{WakeUp: wake, Sleep: sleep})
	require.NoError(t, err)
	return day
}

func newTask(t *testing.T, name string, d time.Duration, imp domain.Importance, opts ...domain.TaskOption) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(name, d, imp, opts...)
	require.NoError(t, err)
	return task
}
