package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// SagaRepositoryFacade persists saga instances. UpdateProgress is the only
// place saga state is durably mutated mid-flight.
type SagaRepositoryFacade interface {
	SaveSaga(ctx context.Context, saga domain.SagaInstance) error
	FindSagaByID(ctx context.Context, sagaID string) (*domain.SagaInstance, error)

	// UpdateProgress persists the updated payload and step pointer after a
	// completed step.
	UpdateProgress(ctx context.Context, sagaID string, step int, payload json.RawMessage, at time.Time) error

	// UpdateStatus transitions the saga's lifecycle state, recording the
	// original failure message on terminal states.
	UpdateStatus(ctx context.Context, sagaID string, status domain.SagaStatus, errMsg string, at time.Time) error

	// Heartbeat refreshes last_heartbeat; an external reaper uses staleness
	// to detect stuck sagas.
	Heartbeat(ctx context.Context, sagaID string, at time.Time) error
}
