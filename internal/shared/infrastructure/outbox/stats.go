package outbox

import (
	"sync"
	"time"
)

// Stats is a snapshot of processor activity served on /healthz.
type Stats struct {
	IsRunning       bool       `json:"is_running"`
	PublishedCount  uint64     `json:"published_count"`
	FailedCount     uint64     `json:"failed_count"`
	DeadCount       uint64     `json:"dead_count"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
	OldestMessageAt *time.Time `json:"oldest_message_at,omitempty"`
}

type tracker struct {
	mu sync.Mutex
	s  Stats
}

func stamp() *time.Time {
	now := time.Now()
	return &now
}

func (t *tracker) published() {
	t.mu.Lock()
	t.s.PublishedCount++
	t.mu.Unlock()
}

// fail records err. counted marks a publish attempt rather than a poll
// error; dead marks a dead-lettered attempt.
func (t *tracker) fail(err error, counted, dead bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case counted && dead:
		t.s.DeadCount++
	case counted:
		t.s.FailedCount++
	}
	t.s.LastError = err.Error()
	t.s.LastErrorAt = stamp()
}

// polled updates lag from the oldest message of the batch just read.
func (t *tracker) polled(batch []*Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := stamp()
	t.s.LastProcessedAt = now
	t.s.LagSeconds = 0
	t.s.OldestMessageAt = nil
	for _, msg := range batch {
		if t.s.OldestMessageAt == nil || msg.CreatedAt.Before(*t.s.OldestMessageAt) {
			oldest := msg.CreatedAt
			t.s.OldestMessageAt = &oldest
		}
	}
	if t.s.OldestMessageAt != nil {
		t.s.LagSeconds = now.Sub(*t.s.OldestMessageAt).Seconds()
	}
}

func (t *tracker) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}
