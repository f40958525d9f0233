package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the engine and consumed by the external
// notification/webhook dispatcher.
const (
	EventChargePosted          = "tenant.charge.posted"
	EventPaymentPlanCreated    = "tenant.payment_plan.created"
	EventLateFeeAssessed       = "late_fee.assessed"
	EventTenantCreditCreated   = "tenant.credit.created"
	EventPaymentProcessed      = "payment.processed"
	EventCompensationCompleted = "payment.compensation.completed"
	EventNotificationSend      = "notification.send"
	EventWebhookSend           = "webhook.send"
)

// DomainEvent is an event that occurred in the engine. Delivery semantics
// belong to the external dispatcher; the core only emits.
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	EventPayload() map[string]any
}

// BaseDomainEvent provides the common fields for all emitted events.
type BaseDomainEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewDomainEvent creates an event of the given type with an opaque payload.
func NewDomainEvent(eventType string, payload map[string]any) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func (e BaseDomainEvent) EventID() string              { return e.ID }
func (e BaseDomainEvent) EventType() string            { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time        { return e.Timestamp }
func (e BaseDomainEvent) EventPayload() map[string]any { return e.Payload }
