package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propfolio/property_mgmt_app/internal/adapters/events"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

type capturingHandler struct {
	types    []string
	received []domain.DomainEvent
	err      error
	panics   bool
}

func (h *capturingHandler) Handle(ctx context.Context, event domain.DomainEvent) error {
	if h.panics {
		panic("subscriber bug")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *capturingHandler) EventTypes() []string { return h.types }

func TestBusDeliversToMatchingHandlersOnly(t *testing.T) {
	bus := events.NewInMemoryEventBus(nil)

	charges := &capturingHandler{types: []string{domain.EventChargePosted}}
	payments := &capturingHandler{types: []string{domain.EventPaymentProcessed}}
	bus.Subscribe(charges)
	bus.Subscribe(payments)

	event := domain.NewDomainEvent(domain.EventChargePosted, map[string]any{"chargeId": "c1"})
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, charges.received, 1)
	assert.Equal(t, event.EventID(), charges.received[0].EventID())
	assert.Empty(t, payments.received)
}

func TestBusExplicitSubscriptionOverridesHandlerTypes(t *testing.T) {
	bus := events.NewInMemoryEventBus(nil)

	handler := &capturingHandler{types: []string{domain.EventChargePosted}}
	bus.Subscribe(handler, domain.EventWebhookSend)

	require.NoError(t, bus.Publish(context.Background(), domain.NewDomainEvent(domain.EventChargePosted, nil)))
	assert.Empty(t, handler.received)

	require.NoError(t, bus.Publish(context.Background(), domain.NewDomainEvent(domain.EventWebhookSend, nil)))
	assert.Len(t, handler.received, 1)
}

func TestBusFailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := events.NewInMemoryEventBus(nil)

	failing := &capturingHandler{types: []string{domain.EventPaymentProcessed}, err: errors.New("down")}
	healthy := &capturingHandler{types: []string{domain.EventPaymentProcessed}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), domain.NewDomainEvent(domain.EventPaymentProcessed, nil))

	require.NoError(t, err, "publish never propagates handler errors")
	assert.Len(t, healthy.received, 1)
}

func TestBusPanickingHandlerIsContained(t *testing.T) {
	bus := events.NewInMemoryEventBus(nil)

	panicking := &capturingHandler{types: []string{domain.EventNotificationSend}, panics: true}
	healthy := &capturingHandler{types: []string{domain.EventNotificationSend}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), domain.NewDomainEvent(domain.EventNotificationSend, nil))
	})
	assert.Len(t, healthy.received, 1)
}
