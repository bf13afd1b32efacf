// Package commands holds the planning use cases that change state. Every
// handler takes the planning lock, runs in one unit of work and writes the
// domain events it produced to the outbox in the same transaction.
package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/locking"
	sharedApplication "github.com/felixgeelhaar/dayplanner/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/dayplanner/pkg/observability"
)

// LockKey is the lock every planning command holds. Timelines of different
// dates interact through multi-day placement, so one key covers them all.
const LockKey = "planning"

// DayTemplate supplies the waking windows and recurring slots of new days.
type DayTemplate interface {
	HorizonConfig(start time.Time, days int) (domain.HorizonConfig, error)
	NewTimeline(date time.Time, logger *slog.Logger) (*domain.DayTimeline, error)
}

// Deps are the collaborators shared by the command handlers.
type Deps struct {
	Tasks     domain.TaskRepository
	Timelines domain.TimelineRepository
	Outbox    outbox.Repository
	UoW       sharedApplication.UnitOfWork
	Locker    locking.Locker
	Template  DayTemplate
	LockTTL   time.Duration
	// LockWait bounds the wait for the planning lock. Zero waits as long
	// as the context allows.
	LockWait time.Duration
	Actor    string
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// mutate runs fn under the planning lock inside a unit of work. Without a
// locker only the unit of work applies.
func (d Deps) mutate(ctx context.Context, fn sharedApplication.UnitOfWorkFunc) error {
	if d.Locker == nil {
		return sharedApplication.WithUnitOfWork(ctx, d.UoW, fn)
	}
	return locking.WithLockWait(ctx, d.Locker, LockKey, d.LockTTL, d.LockWait, func(ctx context.Context) error {
		return sharedApplication.WithUnitOfWork(ctx, d.UoW, fn)
	})
}

type eventSource interface {
	PullDomainEvents() []sharedDomain.DomainEvent
}

// record moves the pending events of sources into the outbox.
func (d Deps) record(ctx context.Context, sources ...eventSource) (int, error) {
	var events []sharedDomain.DomainEvent
	for _, s := range sources {
		events = append(events, s.PullDomainEvents()...)
	}
	if len(events) == 0 {
		return 0, nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(observability.CorrelationUUID(ctx), d.Actor))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return 0, err
	}
	if err := d.Outbox.SaveBatch(ctx, msgs); err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// timelineFor loads the stored timeline of date or builds a fresh one from
// the template. Template slots are not reported as events.
func (d Deps) timelineFor(ctx context.Context, date time.Time) (*domain.DayTimeline, bool, error) {
	tl, err := d.Timelines.FindByDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if tl != nil {
		return tl, false, nil
	}
	tl, err = d.Template.NewTimeline(date, d.logger())
	if err != nil {
		return nil, false, err
	}
	tl.ClearDomainEvents()
	return tl, true, nil
}

// loadHorizon assembles the horizon from stored timelines, creating the
// missing days from the template.
func (d Deps) loadHorizon(ctx context.Context, start time.Time, days int) (*domain.Horizon, int, error) {
	cfg, err := d.Template.HorizonConfig(start, days)
	if err != nil {
		return nil, 0, err
	}
	dates := cfg.Dates()
	if len(dates) == 0 {
		return nil, 0, &domain.ValidationError{Field: "days", Reason: "must be positive"}
	}

	stored, err := d.Timelines.FindRange(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, 0, err
	}
	byDate := make(map[string]*domain.DayTimeline, len(stored))
	for _, tl := range stored {
		byDate[domain.DateKey(tl.Date())] = tl
	}

	created := 0
	timelines := make([]*domain.DayTimeline, 0, len(dates))
	for _, date := range dates {
		if tl, ok := byDate[domain.DateKey(date)]; ok {
			timelines = append(timelines, tl)
			continue
		}
		tl, err := d.Template.NewTimeline(date, d.logger())
		if err != nil {
			return nil, 0, err
		}
		tl.ClearDomainEvents()
		timelines = append(timelines, tl)
		created++
	}

	horizon, err := domain.AssembleHorizon(timelines)
	if err != nil {
		return nil, 0, err
	}
	return horizon, created, nil
}
