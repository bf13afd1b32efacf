package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DayWindow is the waking window of a day, expressed as offsets from
// midnight. A Sleep offset at or before WakeUp ends on the next calendar day.
type DayWindow struct {
	WakeUp time.Duration `json:"wake_up"`
	Sleep  time.Duration `json:"sleep"`
}

// Validate checks both offsets lie within one day and differ.
func (w DayWindow) Validate() error {
	if w.WakeUp < 0 || w.WakeUp >= 24*time.Hour {
		return invalid("wake_up", fmt.Sprintf("offset %s is outside the day", w.WakeUp))
	}
	if w.Sleep < 0 || w.Sleep >= 24*time.Hour {
		return invalid("sleep", fmt.Sprintf("offset %s is outside the day", w.Sleep))
	}
	if w.WakeUp == w.Sleep {
		return invalid("sleep", "must differ from wake up")
	}
	return nil
}

// Bounds resolves the window on a concrete date.
func (w DayWindow) Bounds(date time.Time) (Interval, error) {
	if err := w.Validate(); err != nil {
		return Interval{}, err
	}
	start := At(date, w.WakeUp)
	end := At(date, w.Sleep)
	if w.Sleep < w.WakeUp {
		end = At(DateOf(date).AddDate(0, 0, 1), w.Sleep)
	}
	return NewInterval(start, end)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// At returns the wall-clock time offset after midnight of date. Offsets are
// applied as clock readings so DST transitions do not shift them.
func At(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	h := int(offset / time.Hour)
	mins := int((offset % time.Hour) / time.Minute)
	sec := int((offset % time.Minute) / time.Second)
	return time.Date(y, m, d, h, mins, sec, 0, date.Location())
}

// ParseDate reads a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid("date", fmt.Sprintf("%q is not YYYY-MM-DD", s))
	}
	return d, nil
}
