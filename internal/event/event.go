package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/drawstorm/internal/event/topic"
)

// Event is an immutable, typed event.
type Event[T any] struct {
	// Type is the hierarchical event type, e.g. "page.activated".
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// NewEvent creates an event with fresh metadata.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// TopicProvider is implemented by every Event[T].
type TopicProvider interface {
	EventTopic() topic.Topic
}

// PayloadAs extracts a typed payload from a type-erased event.
func PayloadAs[T any](ev any) (T, bool) {
	e, ok := ev.(Event[T])
	if !ok {
		var zero T
		return zero, false
	}
	return e.Payload, true
}
