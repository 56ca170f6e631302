// Package event carries domain events from the code that causes them to the
// subscribers that react to them.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Name identifies an event type. Subscribers register against a Name.
type Name string

// ChirpCreatedEvent is emitted once per successfully persisted chirp.
const ChirpCreatedEvent Name = "chirp.created"

// Event is implemented by every domain event.
type Event interface {
	EventName() Name
}

// ChirpCreated announces a newly stored chirp. It carries identifiers only;
// subscribers re-read anything else from the record store.
type ChirpCreated struct {
	ChirpID    uuid.UUID
	AuthorID   uuid.UUID
	OccurredAt time.Time
}

// EventName implements Event.
func (ChirpCreated) EventName() Name { return ChirpCreatedEvent }
