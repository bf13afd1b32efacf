package database

import (
	"database/sql"
	"time"
)

// TimestampLayout stores instants as fixed-width UTC text so both drivers
// compare them lexicographically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatNullTime maps nil to SQL NULL.
func FormatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseTime parses a stored timestamp into loc. A nil loc keeps UTC.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		// Rows written by hand or by older tooling may use plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t, nil
}

func ParseNullTime(s sql.NullString, loc *time.Location) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTime(s.String, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
