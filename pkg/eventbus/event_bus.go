// Package eventbus provides event-driven notification of execution
// lifecycle changes.
package eventbus

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
