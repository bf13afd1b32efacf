package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const selectColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository on either database driver.
type SQLRepository struct {
	conn database.Connection
}

func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, database.ExecutorFromContext(ctx, r.conn), msg)
}

// SaveBatch inserts msgs in the caller's transaction, or in one of its own
// when ctx carries none.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if tx := database.TxFromContext(ctx); tx != nil {
		return r.insertAll(ctx, tx, msgs)
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := r.insertAll(ctx, tx, msgs); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *SQLRepository) insertAll(ctx context.Context, exec database.Executor, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.insert(ctx, exec, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) insert(ctx context.Context, exec database.Executor, msg *Message) error {
	metadata := string(msg.Metadata)
	if metadata == "" {
		metadata = "{}"
	}
	err := exec.QueryRow(ctx, `
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at, next_retry_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		database.FormatTime(msg.CreatedAt),
		database.FormatNullTime(msg.NextRetryAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
	}
	return nil
}

func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT `+selectColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		database.FormatTime(time.Now()), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET published_at = ?, last_error = NULL WHERE id = ?`,
		database.FormatTime(time.Now()), id,
	)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, database.FormatTime(nextRetryAt), id,
	)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ?, last_error = ?, retry_count = retry_count + 1 WHERE id = ?`,
		database.FormatTime(time.Now()), reason, reason, id,
	)
	return err
}

func (r *SQLRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL AND dead_lettered_at IS NULL`,
	).Scan(&n)
	return n, err
}

func (r *SQLRepository) DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.FormatTime(publishedBefore),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(rows database.Rows) (*Message, error) {
	var (
		msg                              Message
		eventID, aggregateID             string
		payload, metadata, createdAt     string
		publishedAt, nextRetryAt, deadAt sql.NullString
		lastError, deadReason            sql.NullString
	)
	if err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt, &msg.RetryCount,
		&lastError, &deadAt, &deadReason,
	); err != nil {
		return nil, err
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d event_id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d aggregate_id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = database.ParseTime(createdAt, time.UTC); err != nil {
		return nil, fmt.Errorf("outbox %d created_at: %w", msg.ID, err)
	}
	if msg.PublishedAt, err = database.ParseNullTime(publishedAt, time.UTC); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = database.ParseNullTime(nextRetryAt, time.UTC); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = database.ParseNullTime(deadAt, time.UTC); err != nil {
		return nil, err
	}
	msg.Payload = []byte(payload)
	msg.Metadata = []byte(metadata)
	msg.LastError = nullString(lastError)
	msg.DeadLetterReason = nullString(deadReason)
	return &msg, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
