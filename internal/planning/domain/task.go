package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/google/uuid"
)

// Status is the placement state of a task. It is changed by timelines and
// the allocator only.
type Status int

const (
	StatusUnscheduled Status = iota
	StatusScheduled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnscheduled:
		return "unscheduled"
	case StatusScheduled:
		return "scheduled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored status name back into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unscheduled", "":
		return StatusUnscheduled, nil
	case "scheduled":
		return StatusScheduled, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusUnscheduled, invalid("status", "unknown status "+s)
	}
}

// Task is a unit of work with an estimated duration waiting to be placed.
type Task struct {
	sharedDomain.BaseAggregateRoot
	name          string
	duration      time.Duration
	importance    Importance
	deadline      *time.Time
	earliestStart *time.Time
	note          string
	splittable    bool
	status        Status
}

// TaskOption sets an optional attribute at construction time.
type TaskOption func(*Task)

// WithDeadline requires the placed interval to end at or before deadline.
func WithDeadline(deadline time.Time) TaskOption {
	return func(t *Task) { t.deadline = &deadline }
}

// WithEarliestStart forbids placement before start.
func WithEarliestStart(start time.Time) TaskOption {
	return func(t *Task) { t.earliestStart = &start }
}

func WithNote(note string) TaskOption {
	return func(t *Task) { t.note = strings.TrimSpace(note) }
}

// WithID keeps an identity assigned elsewhere, such as in an import file.
func WithID(id uuid.UUID) TaskOption {
	return func(t *Task) { t.BaseAggregateRoot = sharedDomain.NewBaseAggregateRootWithID(id) }
}

// Splittable allows the allocator to place the task in several parts when
// splitting is enabled.
func Splittable() TaskOption {
	return func(t *Task) { t.splittable = true }
}

// NewTask creates an unscheduled task.
func NewTask(name string, duration time.Duration, importance Importance, opts ...TaskOption) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	if duration <= 0 {
		return nil, invalid("duration", "must be positive")
	}
	if _, err := NewImportance(int(importance)); err != nil {
		return nil, err
	}

	t := &Task{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		duration:          duration,
		importance:        importance,
		status:            StatusUnscheduled,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.deadline != nil && t.earliestStart != nil && !t.earliestStart.Before(*t.deadline) {
		return nil, invalid("earliest_start", "must be before the deadline")
	}

	t.AddDomainEvent(NewTaskCreated(t))
	return t, nil
}

// RehydrateTask recreates a task from persisted state.
func RehydrateTask(
	id uuid.UUID,
	name string,
	duration time.Duration,
	importance Importance,
	deadline, earliestStart *time.Time,
	note string,
	splittable bool,
	status Status,
	createdAt, updatedAt time.Time,
) *Task {
	base := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Task{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base),
		name:              name,
		duration:          duration,
		importance:        importance,
		deadline:          deadline,
		earliestStart:     earliestStart,
		note:              note,
		splittable:        splittable,
		status:            status,
	}
}

func (t *Task) Name() string              { return t.name }
func (t *Task) Duration() time.Duration   { return t.duration }
func (t *Task) Importance() Importance    { return t.importance }
func (t *Task) Deadline() *time.Time      { return t.deadline }
func (t *Task) EarliestStart() *time.Time { return t.earliestStart }
func (t *Task) Note() string              { return t.note }
func (t *Task) IsSplittable() bool        { return t.splittable }
func (t *Task) Status() Status            { return t.status }
func (t *Task) IsPending() bool           { return t.status != StatusScheduled }
func (t *Task) HasDeadline() bool         { return t.deadline != nil }
func (t *Task) HasEarliestStart() bool    { return t.earliestStart != nil }

func (t *Task) markScheduled() {
	t.status = StatusScheduled
	t.Touch()
}

func (t *Task) markFailed(reason FailureReason) {
	t.status = StatusFailed
	t.Touch()
	t.AddDomainEvent(NewTaskFailed(t, reason))
}

func (t *Task) markUnscheduled() {
	if t.status == StatusUnscheduled {
		return
	}
	t.status = StatusUnscheduled
	t.Touch()
}
