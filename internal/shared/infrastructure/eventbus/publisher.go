package eventbus

import "context"

// Publisher sends an encoded envelope under a routing key. The outbox
// processor retries any error it returns.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}
