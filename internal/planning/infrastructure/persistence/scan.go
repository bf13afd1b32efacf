// Package persistence stores planning aggregates through the shared
// database.Connection, so one set of queries serves SQLite and Postgres.
package persistence

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	loc *time.Location
}

// WithLocation sets the zone stored instants are returned in. Timelines are
// planned in wall-clock time, so this should match the planner's zone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", field, err)
	}
	return id, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateKey(date time.Time) string {
	return domain.DateKey(domain.DateOf(date))
}
