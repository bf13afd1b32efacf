// Package domain holds the identity and event recording shared by the
// planning aggregates.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and modification timestamps in UTC.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

func (e *BaseEntity) Touch() {
	e.updatedAt = time.Now().UTC()
}

// BaseAggregateRoot records domain events until the command handler pulls
// them into the outbox.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return NewBaseAggregateRootWithID(uuid.New())
}

// NewBaseAggregateRootWithID keeps an id chosen elsewhere, such as an
// import file.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	now := time.Now().UTC()
	return BaseAggregateRoot{BaseEntity: BaseEntity{id: id, createdAt: now, updatedAt: now}}
}

func RehydrateBaseAggregateRoot(entity BaseEntity) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns a copy of the recorded events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	if len(a.pending) == 0 {
		return nil
	}
	return append([]DomainEvent(nil), a.pending...)
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// PullDomainEvents returns the recorded events and forgets them.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
