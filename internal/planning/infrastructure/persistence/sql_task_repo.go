package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const taskColumns = `id, name, duration_seconds, importance, deadline, earliest_start,
	note, splittable, status, created_at, updated_at`

// SQLTaskRepository implements domain.TaskRepository.
type SQLTaskRepository struct {
	conn database.Connection
	opts options
}

func NewSQLTaskRepository(conn database.Connection, opts ...Option) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn, opts: buildOptions(opts)}
}

// Save inserts the task or replaces its stored state.
func (r *SQLTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			duration_seconds = excluded.duration_seconds,
			importance = excluded.importance,
			deadline = excluded.deadline,
			earliest_start = excluded.earliest_start,
			note = excluded.note,
			splittable = excluded.splittable,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		task.ID().String(),
		task.Name(),
		int64(task.Duration()/time.Second),
		task.Importance().Int(),
		database.FormatNullTime(task.Deadline()),
		database.FormatNullTime(task.EarliestStart()),
		task.Note(),
		boolInt(task.IsSplittable()),
		task.Status().String(),
		database.FormatTime(task.CreatedAt()),
		database.FormatTime(task.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID(), err)
	}
	return nil
}

func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	task, err := r.scan(row)
	if database.IsNoRows(err) {
		return nil, &domain.NotFoundError{Resource: "task", Key: id.String()}
	}
	return task, err
}

// List returns tasks matching filter in creation order.
func (r *SQLTaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, len(filter.Statuses))
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			marks[i] = "?"
			args = append(args, s.String())
		}
		query += ` WHERE status IN (` + strings.Join(marks, ", ") + `)`
	}
	query += ` ORDER BY created_at, id`

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *SQLTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: "task", Key: id.String()}
	}
	return nil
}

func (r *SQLTaskRepository) scan(row database.Row) (*domain.Task, error) {
	var (
		id, name, note, status string
		createdAt, updatedAt   string
		durationSeconds        int64
		importance, splittable int
		deadline, earliest     sql.NullString
	)
	if err := row.Scan(&id, &name, &durationSeconds, &importance, &deadline, &earliest,
		&note, &splittable, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	taskID, err := parseID("task id", id)
	if err != nil {
		return nil, err
	}
	imp, err := domain.NewImportance(importance)
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	deadlineAt, err := database.ParseNullTime(deadline, r.opts.loc)
	if err != nil {
		return nil, fmt.Errorf("task %s deadline: %w", id, err)
	}
	earliestAt, err := database.ParseNullTime(earliest, r.opts.loc)
	if err != nil {
		return nil, fmt.Errorf("task %s earliest_start: %w", id, err)
	}
	created, err := database.ParseTime(createdAt, r.opts.loc)
	if err != nil {
		return nil, err
	}
	updated, err := database.ParseTime(updatedAt, r.opts.loc)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateTask(taskID, name, time.Duration(durationSeconds)*time.Second, imp,
		deadlineAt, earliestAt, note, splittable != 0, st, created, updated), nil
}
