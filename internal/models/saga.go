package models

import (
	"encoding/json"
	"time"
)

// SagaInstance is a row of the saga_instances table. Payload is stored as
// JSONB and is opaque to the store.
type SagaInstance struct {
	SagaID        string          `json:"sagaID"`
	SagaType      string          `json:"sagaType"`
	CurrentStep   int             `json:"currentStep"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	LastHeartbeat time.Time       `json:"lastHeartbeat"`
	Error         string          `json:"error"`
	AuditFields
}
