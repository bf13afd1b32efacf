// Package profile loads the user's day profile: waking window, meals and the
// weekly course timetable that seed every new day timeline.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
)

const coursePrefix = "Course: "

var errNoMeal = errors.New("meal disabled")

// Course is a weekly recurring fixed slot.
type Course struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Name  string `json:"name"`
}

// DayOverride replaces profile fields on one date. Empty fields inherit and
// a meal set to "none" is dropped for that day.
type DayOverride struct {
	WakeUp    string `json:"wake_up,omitempty"`
	Sleep     string `json:"sleep,omitempty"`
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

// Profile is the persisted day profile. Clock values use HH:MM and meal
// ranges HH:MM-HH:MM.
type Profile struct {
	WakeUp    string `json:"wake_up"`
	Sleep     string `json:"sleep"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Timezone  string `json:"timezone,omitempty"`

	// Courses is keyed by weekday, "0" for Monday through "6" for Sunday.
	Courses map[string][]Course `json:"courses,omitempty"`

	// Overrides is keyed by YYYY-MM-DD.
	Overrides map[string]DayOverride `json:"overrides,omitempty"`
}

// Default returns the built-in profile used when no file exists.
func Default() *Profile {
	return &Profile{
		WakeUp:    "07:20",
		Sleep:     "23:40",
		Breakfast: "07:40-08:00",
		Lunch:     "12:00-13:40",
		Dinner:    "18:00-18:30",
		Courses:   map[string][]Course{},
		Overrides: map[string]DayOverride{},
	}
}

// Validate parses every clock value once.
func (p *Profile) Validate() error {
	if _, err := p.Location(); err != nil {
		return err
	}
	if _, err := p.window(DayOverride{}); err != nil {
		return err
	}
	for _, meal := range []struct{ name, value string }{
		{"breakfast", p.Breakfast}, {"lunch", p.Lunch}, {"dinner", p.Dinner},
	} {
		if _, _, err := parseRange(meal.value); err != nil && !errors.Is(err, errNoMeal) {
			return fmt.Errorf("%s: %w", meal.name, err)
		}
	}
	for key, courses := range p.Courses {
		wd, err := strconv.Atoi(key)
		if err != nil || wd < 0 || wd > 6 {
			return fmt.Errorf("courses: weekday %q must be 0 (Monday) to 6 (Sunday)", key)
		}
		for _, c := range courses {
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("courses[%s]: course name must not be empty", key)
			}
			if _, _, err := parseRange(c.Start + "-" + c.End); err != nil {
				return fmt.Errorf("courses[%s] %s: %w", key, c.Name, err)
			}
		}
	}
	for key, o := range p.Overrides {
		if _, err := time.Parse("2006-01-02", key); err != nil {
			return fmt.Errorf("overrides: %q is not YYYY-MM-DD", key)
		}
		if _, err := p.window(o); err != nil {
			return fmt.Errorf("overrides[%s]: %w", key, err)
		}
	}
	return nil
}

// Location resolves Timezone, falling back to the local zone.
func (p *Profile) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

func (p *Profile) override(date time.Time) DayOverride {
	return p.Overrides[domain.DateKey(date)]
}

func (p *Profile) window(o DayOverride) (domain.DayWindow, error) {
	wake, err := parseClock(pick(o.WakeUp, p.WakeUp))
	if err != nil {
		return domain.DayWindow{}, fmt.Errorf("wake_up: %w", err)
	}
	sleep, err := parseClock(pick(o.Sleep, p.Sleep))
	if err != nil {
		return domain.DayWindow{}, fmt.Errorf("sleep: %w", err)
	}
	w := domain.DayWindow{WakeUp: wake, Sleep: sleep}
	return w, w.Validate()
}

// Window returns the waking window for date.
func (p *Profile) Window(date time.Time) (domain.DayWindow, error) {
	return p.window(p.override(date))
}

// HorizonConfig describes days consecutive dates from start, carrying every
// date whose window differs from the default as an override.
func (p *Profile) HorizonConfig(start time.Time, days int) (domain.HorizonConfig, error) {
	base, err := p.window(DayOverride{})
	if err != nil {
		return domain.HorizonConfig{}, err
	}
	cfg := domain.HorizonConfig{
		Start:     domain.DateOf(start),
		Days:      days,
		Window:    base,
		Overrides: map[string]domain.DayWindow{},
	}
	for _, date := range cfg.Dates() {
		w, err := p.Window(date)
		if err != nil {
			return domain.HorizonConfig{}, fmt.Errorf("%s: %w", domain.DateKey(date), err)
		}
		if w != base {
			cfg.Overrides[domain.DateKey(date)] = w
		}
	}
	return cfg, nil
}

// Slot is a profile-defined fixed slot resolved on a date.
type Slot struct {
	Start       time.Time
	End         time.Time
	Description string
}

// SlotsFor returns the meals, then the courses, of date in start order
// within each group.
func (p *Profile) SlotsFor(date time.Time) ([]Slot, error) {
	day := domain.DateOf(date)
	o := p.override(day)

	var slots []Slot
	for _, meal := range []struct{ name, value string }{
		{"Breakfast", pick(o.Breakfast, p.Breakfast)},
		{"Lunch", pick(o.Lunch, p.Lunch)},
		{"Dinner", pick(o.Dinner, p.Dinner)},
	} {
		start, end, err := parseRange(meal.value)
		if errors.Is(err, errNoMeal) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToLower(meal.name), err)
		}
		slots = append(slots, Slot{Start: domain.At(day, start), End: domain.At(day, end), Description: meal.name})
	}

	courses := append([]Course(nil), p.Courses[strconv.Itoa(weekday(day))]...)
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Start < courses[j].Start })
	for _, c := range courses {
		start, end, err := parseRange(c.Start + "-" + c.End)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", c.Name, err)
		}
		slots = append(slots, Slot{Start: domain.At(day, start), End: domain.At(day, end), Description: coursePrefix + c.Name})
	}
	return slots, nil
}

// NewTimeline creates the timeline for date with the profile's window and
// slots. Slots that fall outside the window or collide with an earlier slot
// are skipped with a warning.
func (p *Profile) NewTimeline(date time.Time, logger *slog.Logger) (*domain.DayTimeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := p.Window(date)
	if err != nil {
		return nil, err
	}
	tl, err := domain.NewDayTimeline(date, w)
	if err != nil {
		return nil, err
	}
	if err := p.Furnish(tl, logger); err != nil {
		return nil, err
	}
	return tl, nil
}

// Furnish adds the profile slots of tl's date to tl.
func (p *Profile) Furnish(tl *domain.DayTimeline, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	slots, err := p.SlotsFor(tl.Date())
	if err != nil {
		return err
	}
	for _, s := range slots {
		if _, err := tl.AddFixedSlot(s.Start, s.End, s.Description); err != nil {
			logger.Warn("skipping profile slot",
				"date", domain.DateKey(tl.Date()),
				"slot", s.Description,
				"error", err,
			)
		}
	}
	return nil
}

// weekday maps time.Weekday so Monday is 0.
func weekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

func pick(override, base string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return base
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseRange(s string) (time.Duration, time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, 0, errNoMeal
	}
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not HH:MM-HH:MM", s)
	}
	start, err := parseClock(from)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(to)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%q ends before it starts", s)
	}
	return start, end, nil
}
