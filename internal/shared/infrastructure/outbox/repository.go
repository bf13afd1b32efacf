package outbox

import (
	"context"
	"time"
)

// Repository stores outbox messages. Save and SaveBatch join the
// transaction carried by ctx so events commit with the aggregate.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns live messages whose retry time has passed,
	// oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// CountPending counts messages neither published nor dead-lettered.
	CountPending(ctx context.Context) (int, error)

	// DeleteOld removes messages published before the cutoff.
	DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error)
}
