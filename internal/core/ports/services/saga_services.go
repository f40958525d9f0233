package services

import (
	"context"
	"encoding/json"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// SagaStep is one unit of a saga. Execute returns the payload to carry into
// the next step; a returned error makes the orchestrator compensate instead
// of advancing. Compensate undoes the step's durable effects given the
// payload as it stood after the step completed.
type SagaStep interface {
	Name() string
	Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	Compensate(ctx context.Context, payload json.RawMessage) error
}

// SagaOrchestratorFacade is the generic saga runtime: step sequencing,
// heartbeats, durable progress and failure-to-compensation dispatch.
type SagaOrchestratorFacade interface {
	// Run persists a new saga instance and drives it through the steps.
	// The returned instance is terminal: completed, failed, or
	// requires_manual_review when compensation itself hit a failure.
	Run(ctx context.Context, sagaType string, payload json.RawMessage, steps []SagaStep) (*domain.SagaInstance, error)

	// Resume continues a saga from its last persisted step after a process
	// restart. Terminal sagas are returned unchanged.
	Resume(ctx context.Context, sagaID string, steps []SagaStep) (*domain.SagaInstance, error)
}
