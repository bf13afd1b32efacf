package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. The routing key doubles
// as the outbox event type and the broker routing key.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata links the events produced by one command.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	Actor         string    `json:"actor,omitempty"`
}

// BaseEvent is embedded by concrete events. Nothing in it is exported, so
// marshalling an event yields only its own body.
type BaseEvent struct {
	id        uuid.UUID
	aggregate struct {
		id   uuid.UUID
		kind string
	}
	key  string
	at   time.Time
	meta EventMetadata
}

func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string) BaseEvent {
	e := BaseEvent{id: uuid.New(), key: routingKey, at: time.Now().UTC()}
	e.aggregate.id = aggregateID
	e.aggregate.kind = aggregateType
	return e
}

func (e BaseEvent) EventID() uuid.UUID      { return e.id }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.aggregate.id }
func (e BaseEvent) AggregateType() string   { return e.aggregate.kind }
func (e BaseEvent) RoutingKey() string      { return e.key }
func (e BaseEvent) OccurredAt() time.Time   { return e.at }
func (e BaseEvent) Metadata() EventMetadata { return e.meta }

func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.meta = metadata
}
