package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	TaskAggregateType     = "Task"
	TimelineAggregateType = "DayTimeline"

	RoutingKeyTaskCreated     = "planning.task.created"
	RoutingKeyTaskPlaced      = "planning.task.placed"
	RoutingKeyTaskFailed      = "planning.task.failed"
	RoutingKeyTaskUnscheduled = "planning.task.unscheduled"
	RoutingKeySlotAdded       = "planning.slot.added"
)

// TaskCreated is emitted when a task enters the backlog.
type TaskCreated struct {
	sharedDomain.BaseEvent
	Name       string        `json:"name"`
	Duration   time.Duration `json:"duration"`
	Importance int           `json:"importance"`
	Deadline   *time.Time    `json:"deadline,omitempty"`
}

func NewTaskCreated(t *Task) *TaskCreated {
	return &TaskCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(t.ID(), TaskAggregateType, RoutingKeyTaskCreated),
		Name:       t.Name(),
		Duration:   t.Duration(),
		Importance: t.Importance().Int(),
		Deadline:   t.Deadline(),
	}
}

// TaskPlaced is emitted for every placement written to a timeline.
type TaskPlaced struct {
	sharedDomain.BaseEvent
	TaskID     uuid.UUID `json:"task_id"`
	Name       string    `json:"name"`
	Date       string    `json:"date"`
	Importance int       `json:"importance"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Part       int       `json:"part,omitempty"`
}

func NewTaskPlaced(timeline *DayTimeline, p PlacedTask) *TaskPlaced {
	return &TaskPlaced{
		BaseEvent:  sharedDomain.NewBaseEvent(timeline.ID(), TimelineAggregateType, RoutingKeyTaskPlaced),
		TaskID:     p.TaskID,
		Name:       p.Name,
		Date:       DateKey(timeline.Date()),
		Importance: p.Importance.Int(),
		StartTime:  p.Interval.Start,
		EndTime:    p.Interval.End,
		Part:       p.Part,
	}
}

// TaskFailed is emitted when the allocator could not place a task.
type TaskFailed struct {
	sharedDomain.BaseEvent
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func NewTaskFailed(t *Task, reason FailureReason) *TaskFailed {
	return &TaskFailed{
		BaseEvent: sharedDomain.NewBaseEvent(t.ID(), TaskAggregateType, RoutingKeyTaskFailed),
		Name:      t.Name(),
		Reason:    string(reason),
	}
}

// TaskUnscheduled is emitted when a task's placements leave a timeline.
type TaskUnscheduled struct {
	sharedDomain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
	Date   string    `json:"date"`
}

func NewTaskUnscheduled(timeline *DayTimeline, taskID uuid.UUID) *TaskUnscheduled {
	return &TaskUnscheduled{
		BaseEvent: sharedDomain.NewBaseEvent(timeline.ID(), TimelineAggregateType, RoutingKeyTaskUnscheduled),
		TaskID:    taskID,
		Date:      DateKey(timeline.Date()),
	}
}

// FixedSlotAdded is emitted when a commitment is registered on a timeline.
type FixedSlotAdded struct {
	sharedDomain.BaseEvent
	SlotID      uuid.UUID `json:"slot_id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

func NewFixedSlotAdded(timeline *DayTimeline, slot FixedSlot) *FixedSlotAdded {
	return &FixedSlotAdded{
		BaseEvent:   sharedDomain.NewBaseEvent(timeline.ID(), TimelineAggregateType, RoutingKeySlotAdded),
		SlotID:      slot.ID,
		Date:        DateKey(timeline.Date()),
		Description: slot.Description,
		StartTime:   slot.Interval.Start,
		EndTime:     slot.Interval.End,
	}
}
