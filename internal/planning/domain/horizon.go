package domain

import (
	"fmt"
	"time"
)

// HorizonConfig describes the dates and waking windows of a horizon.
// Overrides are keyed by DateKey.
type HorizonConfig struct {
	Start     time.Time
	Days      int
	Window    DayWindow
	Overrides map[string]DayWindow
}

// WindowFor returns the window that applies on date.
func (c HorizonConfig) WindowFor(date time.Time) DayWindow {
	if w, ok := c.Overrides[DateKey(date)]; ok {
		return w
	}
	return c.Window
}

// Dates lists the horizon's dates in order.
func (c HorizonConfig) Dates() []time.Time {
	dates := make([]time.Time, 0, c.Days)
	first := DateOf(c.Start)
	for i := 0; i < c.Days; i++ {
		dates = append(dates, first.AddDate(0, 0, i))
	}
	return dates
}

// Horizon maps a contiguous range of dates to their timelines.
type Horizon struct {
	days  []*DayTimeline
	index map[string]int
}

// NewHorizon creates one empty timeline per configured date.
func NewHorizon(cfg HorizonConfig) (*Horizon, error) {
	if cfg.Days <= 0 {
		return nil, invalid("days", "must be positive")
	}
	timelines := make([]*DayTimeline, 0, cfg.Days)
	for _, date := range cfg.Dates() {
		tl, err := NewDayTimeline(date, cfg.WindowFor(date))
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", DateKey(date), err)
		}
		timelines = append(timelines, tl)
	}
	return AssembleHorizon(timelines)
}

// AssembleHorizon builds a horizon from existing timelines. Dates must be
// consecutive and windows must not overlap.
func AssembleHorizon(timelines []*DayTimeline) (*Horizon, error) {
	if len(timelines) == 0 {
		return nil, invalid("days", "must be positive")
	}
	h := &Horizon{
		days:  make([]*DayTimeline, len(timelines)),
		index: make(map[string]int, len(timelines)),
	}
	copy(h.days, timelines)

	for i, tl := range h.days {
		key := DateKey(tl.Date())
		if _, dup := h.index[key]; dup {
			return nil, invalid("days", "duplicate date "+key)
		}
		if i > 0 {
			prev := h.days[i-1]
			if DateKey(prev.Date().AddDate(0, 0, 1)) != key {
				return nil, invalid("days", fmt.Sprintf("%s does not follow %s", key, DateKey(prev.Date())))
			}
			if prev.Bounds().End.After(tl.Bounds().Start) {
				return nil, invalid("days", fmt.Sprintf("window of %s overlaps %s", DateKey(prev.Date()), key))
			}
		}
		h.index[key] = i
	}
	return h, nil
}

// Day returns the timeline of date.
func (h *Horizon) Day(date time.Time) (*DayTimeline, error) {
	i, ok := h.index[DateKey(date)]
	if !ok {
		return nil, &NotFoundError{Resource: "day", Key: DateKey(date)}
	}
	return h.days[i], nil
}

// Timelines returns the horizon's timelines in date order.
func (h *Horizon) Timelines() []*DayTimeline {
	return append([]*DayTimeline(nil), h.days...)
}

func (h *Horizon) Len() int { return len(h.days) }

// Start is the first date of the horizon.
func (h *Horizon) Start() time.Time { return h.days[0].Date() }

// Bounds spans from the first day's wake up to the last day's sleep.
func (h *Horizon) Bounds() Interval {
	return Interval{Start: h.days[0].Bounds().Start, End: h.days[len(h.days)-1].Bounds().End}
}

// EarliestFeasibleStart walks the dates in order and returns the first
// start whose end is not after notAfter.
func (h *Horizon) EarliestFeasibleStart(duration time.Duration, notBefore time.Time, notAfter *time.Time) (*DayTimeline, time.Time, bool) {
	for _, day := range h.days {
		if !day.Bounds().End.After(notBefore) {
			continue
		}
		start, ok := day.FindAvailableSlotFrom(duration, notBefore)
		if !ok {
			continue
		}
		if notAfter != nil && start.Add(duration).After(*notAfter) {
			continue
		}
		return day, start, true
	}
	return nil, time.Time{}, false
}

// RemoveTask removes the task from every day and resets it.
func (h *Horizon) RemoveTask(task *Task) []*DayTimeline {
	var touched []*DayTimeline
	for _, day := range h.days {
		if day.RemoveTask(task) {
			touched = append(touched, day)
		}
	}
	return touched
}

// FreeTime sums the free time of every day.
func (h *Horizon) FreeTime() time.Duration {
	var total time.Duration
	for _, day := range h.days {
		total += day.FreeTime()
	}
	return total
}
