package application

import (
	"github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata. A nil correlation id is
// replaced with a fresh one so every command can be traced.
func NewEventMetadata(correlationID uuid.UUID, actor string) domain.EventMetadata {
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		Actor:         actor,
	}
}

// ApplyEventMetadata sets metadata on all events that support it. Events
// must be pointers for the setter to take effect.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
