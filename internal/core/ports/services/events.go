package services

import (
	"context"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// EventPublisher emits domain events for the external notification and
// webhook dispatcher. The core only emits; delivery semantics are external.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.DomainEvent) error
}

// EventHandler consumes domain events, used by in-process subscribers.
type EventHandler interface {
	Handle(ctx context.Context, event domain.DomainEvent) error
	EventTypes() []string
}

// EventSubscriber registers handlers for event types. A handler with no
// explicit types receives all events.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
}

// EventBus combines publishing and subscription.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
