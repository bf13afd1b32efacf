package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/google/uuid"
)

// DayTimeline holds the fixed slots and placed tasks of one date inside the
// day's waking bounds. No two occupied intervals overlap and all of them lie
// within the bounds.
type DayTimeline struct {
	sharedDomain.BaseAggregateRoot
	date   time.Time
	bounds Interval
	fixed  []FixedSlot
	placed []PlacedTask
}

// NewDayTimeline creates an empty timeline for date using window.
func NewDayTimeline(date time.Time, window DayWindow) (*DayTimeline, error) {
	bounds, err := window.Bounds(date)
	if err != nil {
		return nil, err
	}
	return &DayTimeline{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		date:              DateOf(date),
		bounds:            bounds,
	}, nil
}

// RehydrateDayTimeline recreates a timeline from persisted state.
func RehydrateDayTimeline(
	id uuid.UUID,
	date time.Time,
	bounds Interval,
	fixed []FixedSlot,
	placed []PlacedTask,
	createdAt, updatedAt time.Time,
) *DayTimeline {
	base := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	t := &DayTimeline{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base),
		date:              DateOf(date),
		bounds:            bounds,
		fixed:             append([]FixedSlot(nil), fixed...),
		placed:            append([]PlacedTask(nil), placed...),
	}
	t.sortFixed()
	t.sortPlaced()
	return t
}

func (t *DayTimeline) Date() time.Time  { return t.date }
func (t *DayTimeline) Bounds() Interval { return t.bounds }

// FixedSlots returns a copy of the fixed slots in time order.
func (t *DayTimeline) FixedSlots() []FixedSlot {
	return append([]FixedSlot(nil), t.fixed...)
}

// PlacedTasks returns a copy of the placed tasks in time order.
func (t *DayTimeline) PlacedTasks() []PlacedTask {
	return append([]PlacedTask(nil), t.placed...)
}

// PlacementsOf returns the placements belonging to taskID.
func (t *DayTimeline) PlacementsOf(taskID uuid.UUID) []PlacedTask {
	var out []PlacedTask
	for _, p := range t.placed {
		if p.TaskID == taskID {
			out = append(out, p)
		}
	}
	return out
}

// AddFixedSlot inserts an immovable commitment.
func (t *DayTimeline) AddFixedSlot(start, end time.Time, description string) (FixedSlot, error) {
	description = strings.TrimSpace(description)
	iv, err := NewInterval(start, end)
	if err != nil {
		return FixedSlot{}, err
	}
	if err := t.checkFree(iv); err != nil {
		return FixedSlot{}, err
	}

	slot := FixedSlot{ID: uuid.New(), Interval: iv, Description: description}
	t.fixed = append(t.fixed, slot)
	t.sortFixed()
	t.Touch()
	t.AddDomainEvent(NewFixedSlotAdded(t, slot))
	return slot, nil
}

// IsAvailable reports whether [start, end) lies inside the bounds and
// overlaps nothing.
func (t *DayTimeline) IsAvailable(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}
	return t.checkFree(Interval{Start: start, End: end}) == nil
}

// FindAvailableSlot returns the start of the first gap that can hold
// duration.
func (t *DayTimeline) FindAvailableSlot(duration time.Duration) (time.Time, bool) {
	return t.FindAvailableSlotFrom(duration, t.bounds.Start)
}

// FindAvailableSlotFrom is FindAvailableSlot restricted to starts at or
// after notBefore.
func (t *DayTimeline) FindAvailableSlotFrom(duration time.Duration, notBefore time.Time) (time.Time, bool) {
	if duration <= 0 {
		return time.Time{}, false
	}
	for _, gap := range t.AvailableSlots() {
		start := gap.Start
		if notBefore.After(start) {
			start = notBefore
		}
		if !start.Add(duration).After(gap.End) {
			return start, true
		}
	}
	return time.Time{}, false
}

// EarliestFeasibleStart searches this timeline alone. It lets a single day
// act as an allocation target.
func (t *DayTimeline) EarliestFeasibleStart(duration time.Duration, notBefore time.Time, notAfter *time.Time) (*DayTimeline, time.Time, bool) {
	start, ok := t.FindAvailableSlotFrom(duration, notBefore)
	if !ok {
		return nil, time.Time{}, false
	}
	if notAfter != nil && start.Add(duration).After(*notAfter) {
		return nil, time.Time{}, false
	}
	return t, start, true
}

// Timelines returns the receiver as a one-day sequence.
func (t *DayTimeline) Timelines() []*DayTimeline {
	return []*DayTimeline{t}
}

// PlaceTask places task contiguously at start and marks it scheduled.
func (t *DayTimeline) PlaceTask(task *Task, start time.Time) (Interval, error) {
	if task == nil {
		return Interval{}, invalid("task", "must not be nil")
	}
	iv := Interval{Start: start, End: start.Add(task.Duration())}
	if len(t.PlacementsOf(task.ID())) > 0 {
		return Interval{}, &ConflictError{Interval: iv, With: "an existing placement of " + task.Name()}
	}
	if err := t.place(task, iv, 0); err != nil {
		return Interval{}, err
	}
	task.markScheduled()
	return iv, nil
}

func (t *DayTimeline) place(task *Task, iv Interval, part int) error {
	if err := t.checkFree(iv); err != nil {
		return err
	}
	t.insert(task, iv, part)
	return nil
}

// insert records a placement already known to be free.
func (t *DayTimeline) insert(task *Task, iv Interval, part int) {
	p := PlacedTask{
		TaskID:     task.ID(),
		Name:       task.Name(),
		Importance: task.Importance(),
		Interval:   iv,
		Part:       part,
	}
	t.placed = append(t.placed, p)
	t.sortPlaced()
	t.Touch()
	t.AddDomainEvent(NewTaskPlaced(t, p))
}

// RemoveTask deletes every placement of task and resets it to unscheduled.
// Removing a task this timeline does not hold is a no-op, status included.
func (t *DayTimeline) RemoveTask(task *Task) bool {
	if task == nil {
		return false
	}
	if !t.dropPlacements(task.ID()) {
		return false
	}
	task.markUnscheduled()
	t.AddDomainEvent(NewTaskUnscheduled(t, task.ID()))
	return true
}

func (t *DayTimeline) dropPlacements(taskID uuid.UUID) bool {
	kept := t.placed[:0:0]
	for _, p := range t.placed {
		if p.TaskID != taskID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(t.placed) {
		return false
	}
	t.placed = kept
	t.Touch()
	return true
}

// AvailableSlots returns a snapshot of every maximal free gap in order.
func (t *DayTimeline) AvailableSlots() []Interval {
	return gapsWithin(t.bounds, t.occupied())
}

// FreeTime sums the length of all gaps.
func (t *DayTimeline) FreeTime() time.Duration {
	var total time.Duration
	for _, gap := range t.AvailableSlots() {
		total += gap.Duration()
	}
	return total
}

func (t *DayTimeline) occupied() []Interval {
	out := make([]Interval, 0, len(t.fixed)+len(t.placed))
	for _, f := range t.fixed {
		out = append(out, f.Interval)
	}
	for _, p := range t.placed {
		out = append(out, p.Interval)
	}
	return out
}

// checkFree returns a ConflictError naming the first thing iv collides with.
func (t *DayTimeline) checkFree(iv Interval) error {
	if !t.bounds.Contains(iv) {
		return &ConflictError{Interval: iv, With: "day bounds " + t.bounds.String()}
	}
	for _, f := range t.fixed {
		if f.Interval.Overlaps(iv) {
			return &ConflictError{Interval: iv, With: f.Description}
		}
	}
	for _, p := range t.placed {
		if p.Interval.Overlaps(iv) {
			return &ConflictError{Interval: iv, With: p.Label()}
		}
	}
	return nil
}

func (t *DayTimeline) sortFixed() {
	sort.SliceStable(t.fixed, func(i, j int) bool {
		return t.fixed[i].Interval.Start.Before(t.fixed[j].Interval.Start)
	})
}

func (t *DayTimeline) sortPlaced() {
	sort.SliceStable(t.placed, func(i, j int) bool {
		return t.placed[i].Interval.Start.Before(t.placed[j].Interval.Start)
	})
}

type renderRow struct {
	iv    Interval
	kind  string
	label string
}

// Render lists fixed slots, placed tasks and free gaps in time order.
func (t *DayTimeline) Render() string {
	rows := make([]renderRow, 0, len(t.fixed)+len(t.placed))
	for _, f := range t.fixed {
		rows = append(rows, renderRow{iv: f.Interval, kind: "fixed", label: f.Description})
	}
	for _, p := range t.placed {
		rows = append(rows, renderRow{iv: p.Interval, kind: fmt.Sprintf("task %d", p.Importance), label: p.Label()})
	}
	for _, gap := range t.AvailableSlots() {
		rows = append(rows, renderRow{iv: gap, kind: "free"})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].iv.Start.Before(rows[j].iv.Start)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s (%s)\n", DateKey(t.date), t.date.Weekday())
	for _, r := range rows {
		line := fmt.Sprintf("%s - %s  [%s]", r.iv.Start.Format(clockLayout), r.iv.End.Format(clockLayout), r.kind)
		if r.label != "" {
			line += " " + r.label
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
