package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const timelineColumns = `id, date, bounds_start, bounds_end, created_at, updated_at`

// SQLTimelineRepository implements domain.TimelineRepository. A timeline is
// stored as a header row plus its fixed slots and placed tasks, all replaced
// together on Save.
type SQLTimelineRepository struct {
	conn database.Connection
	opts options
}

func NewSQLTimelineRepository(conn database.Connection, opts ...Option) *SQLTimelineRepository {
	return &SQLTimelineRepository{conn: conn, opts: buildOptions(opts)}
}

func (r *SQLTimelineRepository) Save(ctx context.Context, timeline *domain.DayTimeline) error {
	if tx := database.TxFromContext(ctx); tx != nil {
		return r.save(ctx, tx, timeline)
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := r.save(ctx, tx, timeline); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *SQLTimelineRepository) save(ctx context.Context, exec database.Executor, t *domain.DayTimeline) error {
	id := t.ID().String()
	bounds := t.Bounds()
	_, err := exec.Exec(ctx, `
		INSERT INTO day_timelines (`+timelineColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			bounds_start = excluded.bounds_start,
			bounds_end = excluded.bounds_end,
			updated_at = excluded.updated_at`,
		id,
		dateKey(t.Date()),
		database.FormatTime(bounds.Start),
		database.FormatTime(bounds.End),
		database.FormatTime(t.CreatedAt()),
		database.FormatTime(t.UpdatedAt()),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return &domain.ConflictError{Interval: bounds, With: "timeline " + dateKey(t.Date())}
		}
		return fmt.Errorf("save timeline %s: %w", dateKey(t.Date()), err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM fixed_slots WHERE timeline_id = ?`, id); err != nil {
		return err
	}
	for _, slot := range t.FixedSlots() {
		if _, err := exec.Exec(ctx, `
			INSERT INTO fixed_slots (id, timeline_id, start_time, end_time, description)
			VALUES (?, ?, ?, ?, ?)`,
			slot.ID.String(), id,
			database.FormatTime(slot.Interval.Start),
			database.FormatTime(slot.Interval.End),
			slot.Description,
		); err != nil {
			return fmt.Errorf("save fixed slot %s: %w", slot.Description, err)
		}
	}

	if _, err := exec.Exec(ctx, `DELETE FROM placed_tasks WHERE timeline_id = ?`, id); err != nil {
		return err
	}
	for _, p := range t.PlacedTasks() {
		if _, err := exec.Exec(ctx, `
			INSERT INTO placed_tasks (timeline_id, task_id, part, name, importance, start_time, end_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, p.TaskID.String(), p.Part, p.Name, p.Importance.Int(),
			database.FormatTime(p.Interval.Start),
			database.FormatTime(p.Interval.End),
		); err != nil {
			return fmt.Errorf("save placement %s: %w", p.Label(), err)
		}
	}
	return nil
}

// FindByDate returns nil when no timeline was stored for date.
func (r *SQLTimelineRepository) FindByDate(ctx context.Context, date time.Time) (*domain.DayTimeline, error) {
	found, err := r.load(ctx, `SELECT `+timelineColumns+` FROM day_timelines WHERE date = ?`, dateKey(date))
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// FindRange returns stored timelines with from <= date <= to, ordered by date.
func (r *SQLTimelineRepository) FindRange(ctx context.Context, from, to time.Time) ([]*domain.DayTimeline, error) {
	return r.load(ctx, `
		SELECT `+timelineColumns+` FROM day_timelines
		WHERE date >= ? AND date <= ?
		ORDER BY date`,
		dateKey(from), dateKey(to))
}

// FindByTask returns every timeline holding a part of taskID, ordered by date.
func (r *SQLTimelineRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.DayTimeline, error) {
	return r.load(ctx, `
		SELECT `+timelineColumns+` FROM day_timelines
		WHERE id IN (SELECT timeline_id FROM placed_tasks WHERE task_id = ?)
		ORDER BY date`,
		taskID.String())
}

type timelineHeader struct {
	id                   uuid.UUID
	date                 time.Time
	bounds               domain.Interval
	createdAt, updatedAt time.Time
}

// load reads headers to completion before querying children, since the
// SQLite pool holds a single connection.
func (r *SQLTimelineRepository) load(ctx context.Context, query string, args ...any) ([]*domain.DayTimeline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	headers, err := r.headers(ctx, exec, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.DayTimeline, 0, len(headers))
	for _, h := range headers {
		fixed, err := r.fixedSlots(ctx, exec, h.id)
		if err != nil {
			return nil, err
		}
		placed, err := r.placedTasks(ctx, exec, h.id)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RehydrateDayTimeline(h.id, h.date, h.bounds, fixed, placed, h.createdAt, h.updatedAt))
	}
	return out, nil
}

func (r *SQLTimelineRepository) headers(ctx context.Context, exec database.Executor, query string, args ...any) ([]timelineHeader, error) {
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timelineHeader
	for rows.Next() {
		var id, date, start, end, created, updated string
		if err := rows.Scan(&id, &date, &start, &end, &created, &updated); err != nil {
			return nil, err
		}
		h := timelineHeader{}
		if h.id, err = parseID("timeline id", id); err != nil {
			return nil, err
		}
		if h.date, err = domain.ParseDate(date, r.opts.loc); err != nil {
			return nil, err
		}
		if h.bounds, err = r.interval(start, end); err != nil {
			return nil, fmt.Errorf("timeline %s bounds: %w", date, err)
		}
		if h.createdAt, err = database.ParseTime(created, r.opts.loc); err != nil {
			return nil, err
		}
		if h.updatedAt, err = database.ParseTime(updated, r.opts.loc); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *SQLTimelineRepository) fixedSlots(ctx context.Context, exec database.Executor, timelineID uuid.UUID) ([]domain.FixedSlot, error) {
	rows, err := exec.Query(ctx, `
		SELECT id, start_time, end_time, description FROM fixed_slots
		WHERE timeline_id = ? ORDER BY start_time`, timelineID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FixedSlot
	for rows.Next() {
		var id, start, end, desc string
		if err := rows.Scan(&id, &start, &end, &desc); err != nil {
			return nil, err
		}
		slotID, err := parseID("slot id", id)
		if err != nil {
			return nil, err
		}
		iv, err := r.interval(start, end)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", desc, err)
		}
		out = append(out, domain.FixedSlot{ID: slotID, Interval: iv, Description: desc})
	}
	return out, rows.Err()
}

func (r *SQLTimelineRepository) placedTasks(ctx context.Context, exec database.Executor, timelineID uuid.UUID) ([]domain.PlacedTask, error) {
	rows, err := exec.Query(ctx, `
		SELECT task_id, part, name, importance, start_time, end_time FROM placed_tasks
		WHERE timeline_id = ? ORDER BY start_time`, timelineID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlacedTask
	for rows.Next() {
		var (
			taskID, name, start, end string
			part, importance         int
		)
		if err := rows.Scan(&taskID, &part, &name, &importance, &start, &end); err != nil {
			return nil, err
		}
		id, err := parseID("placed task id", taskID)
		if err != nil {
			return nil, err
		}
		iv, err := r.interval(start, end)
		if err != nil {
			return nil, fmt.Errorf("placement %s: %w", name, err)
		}
		out = append(out, domain.PlacedTask{
			TaskID:     id,
			Name:       name,
			Importance: domain.Importance(importance),
			Interval:   iv,
			Part:       part,
		})
	}
	return out, rows.Err()
}

func (r *SQLTimelineRepository) interval(start, end string) (domain.Interval, error) {
	s, err := database.ParseTime(start, r.opts.loc)
	if err != nil {
		return domain.Interval{}, err
	}
	e, err := database.ParseTime(end, r.opts.loc)
	if err != nil {
		return domain.Interval{}, err
	}
	return domain.NewInterval(s, e)
}
