package domain

import (
	"encoding/json"
	"time"
)

// SagaStatus is the lifecycle state of a saga instance.
type SagaStatus string

const (
	SagaRunning      SagaStatus = "running"
	SagaCompensating SagaStatus = "compensating"
	SagaCompleted    SagaStatus = "completed"
	SagaFailed       SagaStatus = "failed"
	// SagaRequiresManualReview marks a saga whose compensation itself hit a
	// failure: some steps may not have been rolled back and an operator must
	// reconcile by hand.
	SagaRequiresManualReview SagaStatus = "requires_manual_review"
)

// IsTerminal reports whether the status permits no further transitions.
func (s SagaStatus) IsTerminal() bool {
	return s == SagaCompleted || s == SagaFailed || s == SagaRequiresManualReview
}

// SagaInstance is the durable record of one saga run. The payload is opaque
// to the orchestrator; it is re-persisted after every completed step so a
// restarted process can resume from CurrentStep.
type SagaInstance struct {
	SagaID        string          `json:"sagaID"` // Primary Key (UUID)
	SagaType      string          `json:"sagaType"`
	CurrentStep   int             `json:"currentStep"`
	Payload       json.RawMessage `json:"payload"`
	Status        SagaStatus      `json:"status"`
	LastHeartbeat time.Time       `json:"lastHeartbeat"`
	// Error holds the original step failure for operator visibility once the
	// saga is terminal.
	Error string `json:"error,omitempty"`
	AuditFields
}
