package domain

import (
	"fmt"
	"sort"
	"time"
)

const clockLayout = "15:04"

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval validates that start is strictly before end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, invalid("interval", fmt.Sprintf("start %s must be before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies fully inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

func (i Interval) String() string {
	return i.Start.Format(clockLayout) + "-" + i.End.Format(clockLayout)
}

// mergeIntervals returns the union of the given intervals as a sorted list
// of disjoint intervals. Adjacent intervals are merged.
func mergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// gapsWithin returns the complement of occupied inside bounds.
func gapsWithin(bounds Interval, occupied []Interval) []Interval {
	var gaps []Interval
	cursor := bounds.Start
	for _, iv := range mergeIntervals(occupied) {
		if iv.End.Before(bounds.Start) || !iv.Start.Before(bounds.End) {
			continue
		}
		if cursor.Before(iv.Start) {
			gaps = append(gaps, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(bounds.End) {
		gaps = append(gaps, Interval{Start: cursor, End: bounds.End})
	}
	return gaps
}
