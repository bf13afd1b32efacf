package outbox

import (
	"context"
	"slices"
	"sync"
	"time"
)

// InMemoryRepository keeps messages in process. Processor tests use it.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	lastID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *InMemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.lastID++
		msg.ID = r.lastID
		r.messages = append(r.messages, msg)
	}
	return nil
}

func pending(msg *Message) bool {
	return !msg.IsPublished() && !msg.IsDead()
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var due []*Message
	for _, msg := range r.messages {
		if len(due) == limit {
			break
		}
		if pending(msg) && (msg.NextRetryAt == nil || !msg.NextRetryAt.After(now)) {
			due = append(due, msg)
		}
	}
	return due, nil
}

// update applies fn to the message with id; unknown ids are ignored.
func (r *InMemoryRepository) update(id int64, fn func(*Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.IndexFunc(r.messages, func(m *Message) bool { return m.ID == id }); i >= 0 {
		fn(r.messages[i])
	}
	return nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64) error {
	return r.update(id, func(m *Message) {
		m.PublishedAt = stamp()
		m.LastError = nil
	})
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(id, func(m *Message) {
		m.RetryCount++
		m.LastError = &errMsg
		m.NextRetryAt = &nextRetryAt
	})
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	return r.update(id, func(m *Message) {
		m.RetryCount++
		m.DeadLetteredAt = stamp()
		m.DeadLetterReason = &reason
		m.LastError = &reason
	})
}

func (r *InMemoryRepository) CountPending(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.messages {
		if pending(msg) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, publishedBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.messages)
	r.messages = slices.DeleteFunc(r.messages, func(m *Message) bool {
		return m.PublishedAt != nil && m.PublishedAt.Before(publishedBefore)
	})
	return int64(before - len(r.messages)), nil
}

// Messages returns every stored message in insertion order.
func (r *InMemoryRepository) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}
