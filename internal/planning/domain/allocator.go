package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FailureReason explains why a task could not be placed.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonNoCapacity          FailureReason = "NoCapacity"
	ReasonDeadlineUnreachable FailureReason = "DeadlineUnreachable"
)

// Target is what the allocator places tasks into: a single timeline or a
// horizon of several.
type Target interface {
	Bounds() Interval
	Timelines() []*DayTimeline
	EarliestFeasibleStart(duration time.Duration, notBefore time.Time, notAfter *time.Time) (*DayTimeline, time.Time, bool)
}

// Placement is one interval a task occupies on a date.
type Placement struct {
	Date     time.Time
	Interval Interval
	Part     int
}

// Outcome is the allocation result for one task.
type Outcome struct {
	TaskID     uuid.UUID
	Name       string
	Importance Importance
	Status     Status
	Reason     FailureReason
	Placements []Placement
}

// Allocation summarises one allocator run. Outcomes are in processing order.
type Allocation struct {
	Outcomes []Outcome
}

func (a Allocation) Scheduled() int { return a.count(StatusScheduled) }
func (a Allocation) Failed() int    { return a.count(StatusFailed) }

func (a Allocation) count(s Status) int {
	n := 0
	for _, o := range a.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the outcomes of tasks that could not be placed.
func (a Allocation) Failures() []Outcome {
	var out []Outcome
	for _, o := range a.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Outcome looks up the result of one task.
func (a Allocation) Outcome(taskID uuid.UUID) (Outcome, bool) {
	for _, o := range a.Outcomes {
		if o.TaskID == taskID {
			return o, true
		}
	}
	return Outcome{}, false
}

// Allocator greedily places tasks by importance and deadline.
type Allocator struct {
	split    bool
	minChunk time.Duration
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithSplitting lets splittable tasks that fit no single gap be placed in
// parts of at least minChunk each.
func WithSplitting(minChunk time.Duration) AllocatorOption {
	return func(a *Allocator) {
		a.split = true
		a.minChunk = minChunk
	}
}

func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	if a.minChunk <= 0 {
		a.minChunk = 15 * time.Minute
	}
	return a
}

// Order returns tasks sorted by importance descending, then deadline
// ascending with undated tasks last. Equal tasks keep their input order.
func (a *Allocator) Order(tasks []*Task) []*Task {
	ordered := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i], ordered[j]
		if ti.Importance() != tj.Importance() {
			return ti.Importance() > tj.Importance()
		}
		di, dj := ti.Deadline(), tj.Deadline()
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return ordered
}

// Allocate places each task at its earliest feasible start in target.
// Tasks already placed in target keep their placements. Later failures
// never undo earlier placements.
func (a *Allocator) Allocate(tasks []*Task, target Target) Allocation {
	ordered := a.Order(tasks)
	result := Allocation{Outcomes: make([]Outcome, 0, len(ordered))}
	for _, task := range ordered {
		result.Outcomes = append(result.Outcomes, a.allocateOne(task, target))
	}
	return result
}

func (a *Allocator) allocateOne(task *Task, target Target) Outcome {
	outcome := Outcome{
		TaskID:     task.ID(),
		Name:       task.Name(),
		Importance: task.Importance(),
	}

	if existing := placementsIn(task, target); len(existing) > 0 {
		task.markScheduled()
		outcome.Status = StatusScheduled
		outcome.Placements = existing
		return outcome
	}

	bounds := target.Bounds()
	deadline := task.Deadline()
	if deadline != nil && deadline.Before(bounds.Start) {
		return a.fail(task, outcome, ReasonDeadlineUnreachable)
	}

	notBefore := bounds.Start
	if es := task.EarliestStart(); es != nil && es.After(notBefore) {
		notBefore = *es
	}

	if day, start, ok := target.EarliestFeasibleStart(task.Duration(), notBefore, deadline); ok {
		if iv, err := day.PlaceTask(task, start); err == nil {
			outcome.Status = StatusScheduled
			outcome.Placements = []Placement{{Date: day.Date(), Interval: iv}}
			return outcome
		}
	}

	if a.split && task.IsSplittable() {
		if parts, ok := a.placeSplit(task, target, notBefore, deadline); ok {
			task.markScheduled()
			outcome.Status = StatusScheduled
			outcome.Placements = parts
			return outcome
		}
	}

	if deadline != nil {
		if _, _, gapExists := target.EarliestFeasibleStart(task.Duration(), notBefore, nil); gapExists {
			return a.fail(task, outcome, ReasonDeadlineUnreachable)
		}
	}
	return a.fail(task, outcome, ReasonNoCapacity)
}

func (a *Allocator) fail(task *Task, outcome Outcome, reason FailureReason) Outcome {
	task.markFailed(reason)
	outcome.Status = StatusFailed
	outcome.Reason = reason
	return outcome
}

type chunk struct {
	day *DayTimeline
	iv  Interval
}

// placeSplit fills gaps in order until the task's duration is covered. The
// parts are committed together or not at all. Chunks are cut from disjoint
// gaps of one snapshot, so committing them cannot conflict.
func (a *Allocator) placeSplit(task *Task, target Target, notBefore time.Time, deadline *time.Time) ([]Placement, bool) {
	remaining := task.Duration()
	var chunks []chunk

	for _, day := range target.Timelines() {
		for _, gap := range day.AvailableSlots() {
			if remaining <= 0 {
				break
			}
			if gap.Start.Before(notBefore) {
				gap.Start = notBefore
			}
			if deadline != nil && gap.End.After(*deadline) {
				gap.End = *deadline
			}
			if !gap.Start.Before(gap.End) {
				continue
			}
			length := min(gap.Duration(), remaining)
			if left := remaining - length; left > 0 && left < a.minChunk {
				// leave the next part room to reach minChunk
				length -= a.minChunk - left
			}
			if length < a.minChunk {
				continue
			}
			chunks = append(chunks, chunk{day: day, iv: Interval{Start: gap.Start, End: gap.Start.Add(length)}})
			remaining -= length
		}
	}
	if remaining > 0 || len(chunks) < 2 {
		return nil, false
	}

	placements := make([]Placement, 0, len(chunks))
	for i, c := range chunks {
		c.day.insert(task, c.iv, i+1)
		placements = append(placements, Placement{Date: c.day.Date(), Interval: c.iv, Part: i + 1})
	}
	return placements, true
}

func placementsIn(task *Task, target Target) []Placement {
	var out []Placement
	for _, day := range target.Timelines() {
		for _, p := range day.PlacementsOf(task.ID()) {
			out = append(out, Placement{Date: day.Date(), Interval: p.Interval, Part: p.Part})
		}
	}
	return out
}
