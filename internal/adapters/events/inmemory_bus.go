package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

// InMemoryEventBus dispatches domain events to in-process subscribers
// synchronously. The engine only emits; anything that needs durable delivery
// (notifications, webhooks) subscribes here and owns its own retry story.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]portssvc.EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]portssvc.EventHandler),
		logger:   logger,
	}
}

var _ portssvc.EventBus = (*InMemoryEventBus)(nil)

// Publish dispatches each event to every handler registered for its type.
// Handler failures are logged and do not stop delivery to other handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...domain.DomainEvent) error {
	for _, event := range events {
		b.mu.RLock()
		handlers := append([]portssvc.EventHandler(nil), b.handlers[event.EventType()]...)
		b.mu.RUnlock()

		for _, handler := range handlers {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					slog.String("event_type", event.EventType()),
					slog.String("event_id", event.EventID()),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// Subscribe registers a handler for the given event types. With no explicit
// types the handler's own EventTypes() are used.
func (b *InMemoryEventBus) Subscribe(handler portssvc.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("Event handler subscribed", slog.Any("event_types", eventTypes))
}

// dispatch delivers one event to one handler, containing panics so a broken
// subscriber cannot take down the financial operation that emitted the event.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler portssvc.EventHandler, event domain.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				slog.String("event_type", event.EventType()),
				slog.Any("panic", r))
		}
	}()
	return handler.Handle(ctx, event)
}
