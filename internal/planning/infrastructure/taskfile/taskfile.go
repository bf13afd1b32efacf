// Package taskfile reads and writes task lists as JSON. The format keeps
// durations in minutes and times as ISO 8601 so files exported by earlier
// planners import unchanged.
package taskfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// localLayout is used for export and for timestamps without an offset.
const localLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	localLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ErrMalformed wraps every decoding failure.
var ErrMalformed = errors.New("malformed task file")

// Record is one task of a task file.
type Record struct {
	ID            uuid.UUID
	Name          string
	Duration      time.Duration
	Importance    int
	Deadline      *time.Time
	EarliestStart *time.Time
	Note          string
	Splittable    bool
	Completed     bool
}

type wireRecord struct {
	Name          string  `json:"name"`
	EstimatedTime float64 `json:"estimated_time"`
	Importance    int     `json:"importance"`
	Deadline      *string `json:"deadline"`
	EarliestStart *string `json:"earliest_start_time"`
	Completed     bool    `json:"completed"`
	Note          *string `json:"note"`
	ID            string  `json:"id,omitempty"`
	Splittable    *bool   `json:"splittable,omitempty"`
}

// Decode reads a JSON array of tasks. Timestamps without an offset are read
// in loc. A missing splittable flag defaults to true.
func Decode(r io.Reader, loc *time.Location) ([]Record, error) {
	if loc == nil {
		loc = time.Local
	}
	var wire []wireRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	records := make([]Record, 0, len(wire))
	for i, w := range wire {
		rec, err := w.record(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (w wireRecord) record(loc *time.Location) (Record, error) {
	rec := Record{
		Name:       strings.TrimSpace(w.Name),
		Duration:   time.Duration(math.Round(w.EstimatedTime)) * time.Minute,
		Importance: w.Importance,
		Completed:  w.Completed,
		Splittable: w.Splittable == nil || *w.Splittable,
	}
	if w.Note != nil {
		rec.Note = *w.Note
	}
	if w.ID != "" {
		id, err := uuid.Parse(w.ID)
		if err != nil {
			return Record{}, fmt.Errorf("id %q: %v", w.ID, err)
		}
		rec.ID = id
	}
	var err error
	if rec.Deadline, err = parseTime(w.Deadline, loc); err != nil {
		return Record{}, fmt.Errorf("deadline: %v", err)
	}
	if rec.EarliestStart, err = parseTime(w.EarliestStart, loc); err != nil {
		return Record{}, fmt.Errorf("earliest_start_time: %v", err)
	}
	return rec, nil
}

func parseTime(s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" || *s == "None" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range parseLayouts {
		t, err := time.ParseInLocation(layout, v, loc)
		if err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%q is not an ISO 8601 time", v)
}

// FromTask converts a stored task into a record.
func FromTask(t *domain.Task) Record {
	return Record{
		ID:            t.ID(),
		Name:          t.Name(),
		Duration:      t.Duration(),
		Importance:    t.Importance().Int(),
		Deadline:      t.Deadline(),
		EarliestStart: t.EarliestStart(),
		Note:          t.Note(),
		Splittable:    t.IsSplittable(),
	}
}

// Encode writes records as an indented JSON array with times in loc.
func Encode(w io.Writer, records []Record, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	wire := make([]wireRecord, 0, len(records))
	for _, r := range records {
		splittable := r.Splittable
		wr := wireRecord{
			Name:          r.Name,
			EstimatedTime: math.Floor(r.Duration.Minutes()),
			Importance:    r.Importance,
			Completed:     r.Completed,
			Deadline:      formatTime(r.Deadline, loc),
			EarliestStart: formatTime(r.EarliestStart, loc),
			Splittable:    &splittable,
		}
		if r.Note != "" {
			note := r.Note
			wr.Note = &note
		}
		if r.ID != uuid.Nil {
			wr.ID = r.ID.String()
		}
		wire = append(wire, wr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(wire)
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(localLayout)
	return &s
}
