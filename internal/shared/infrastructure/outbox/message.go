package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message is a domain event waiting in the outbox.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage serialises event. EventType is the Go type name of the event
// and RoutingKey its bus key.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     eventTypeName(event),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages converts events in order.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event.RoutingKey(), err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func eventTypeName(event domain.DomainEvent) string {
	name := fmt.Sprintf("%T", event)
	return name[strings.LastIndexByte(name, '.')+1:]
}

// Envelope encodes the message as the bus envelope consumers decode.
func (m *Message) Envelope() ([]byte, error) {
	var metadata domain.EventMetadata
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return json.Marshal(&eventbus.ConsumedEvent{
		EventID:       m.EventID,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		RoutingKey:    m.RoutingKey,
		OccurredAt:    m.CreatedAt,
		Payload:       m.Payload,
		Metadata:      metadata,
	})
}

func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}
