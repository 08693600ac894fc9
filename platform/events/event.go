// Package events carries task lifecycle notifications between the command
// pipeline, the observer views and the SSE stream without the producers
// knowing who listens. It is platform plumbing; the event payloads
// themselves live with the modules that publish them.
package events

import (
	"context"
	"time"
)

// Event is implemented by every notification put on the bus.
type Event interface {
	// EventName is the stable routing key, e.g. "tasks.created".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp; embed it in concrete events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler receives events for the names it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to subscribers by event name.
type Bus interface {
	// Publish delivers asynchronously. Task creation and status changes use
	// this so observer refreshes never block the command pipeline.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and returns the first error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name the event's EventName
	// returns. Multiple handlers per name are allowed.
	Subscribe(eventName string, handler Handler)
}
