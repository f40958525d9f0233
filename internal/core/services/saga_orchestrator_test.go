package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/core/services"
)

// fakeStep records execution and compensation order into a shared log.
type fakeStep struct {
	name          string
	execErr       error
	compensateErr error
	log           *[]string
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	*f.log = append(*f.log, "exec:"+f.name)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return payload, nil
}

func (f *fakeStep) Compensate(ctx context.Context, payload json.RawMessage) error {
	*f.log = append(*f.log, "comp:"+f.name)
	return f.compensateErr
}

func permissiveSagaRepo() *MockSagaRepository {
	repo := new(MockSagaRepository)
	repo.On("SaveSaga", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("Heartbeat", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return repo
}

func TestSagaRun_AllStepsSucceed(t *testing.T) {
	repo := permissiveSagaRepo()
	orchestrator := services.NewSagaOrchestrator(repo)
	ctx := context.Background()

	var log []string
	steps := []portssvc.SagaStep{
		&fakeStep{name: "one", log: &log},
		&fakeStep{name: "two", log: &log},
		&fakeStep{name: "three", log: &log},
	}

	instance, err := orchestrator.Run(ctx, "test_saga", json.RawMessage(`{}`), steps)

	require.NoError(t, err)
	assert.Equal(t, domain.SagaCompleted, instance.Status)
	assert.Equal(t, 3, instance.CurrentStep)
	assert.Equal(t, []string{"exec:one", "exec:two", "exec:three"}, log)
	repo.AssertCalled(t, "UpdateStatus", mock.Anything, instance.SagaID, domain.SagaCompleted, "", mock.Anything)
}

func TestSagaRun_FailureCompensatesInReverse(t *testing.T) {
	repo := permissiveSagaRepo()
	orchestrator := services.NewSagaOrchestrator(repo)
	ctx := context.Background()

	var log []string
	steps := []portssvc.SagaStep{
		&fakeStep{name: "one", log: &log},
		&fakeStep{name: "two", log: &log},
		&fakeStep{name: "three", execErr: errors.New("boom"), log: &log},
	}

	instance, err := orchestrator.Run(ctx, "test_saga", json.RawMessage(`{}`), steps)

	require.NoError(t, err)
	assert.Equal(t, domain.SagaFailed, instance.Status)
	assert.Contains(t, instance.Error, "boom")
	assert.Equal(t, []string{"exec:one", "exec:two", "exec:three", "comp:two", "comp:one"}, log)
}

func TestSagaRun_CompensationFailureFlagsManualReview(t *testing.T) {
	repo := permissiveSagaRepo()
	orchestrator := services.NewSagaOrchestrator(repo)
	ctx := context.Background()

	var log []string
	steps := []portssvc.SagaStep{
		&fakeStep{name: "one", compensateErr: errors.New("undo failed"), log: &log},
		&fakeStep{name: "two", log: &log},
		&fakeStep{name: "three", execErr: errors.New("boom"), log: &log},
	}

	instance, err := orchestrator.Run(ctx, "test_saga", json.RawMessage(`{}`), steps)

	require.NoError(t, err)
	assert.Equal(t, domain.SagaRequiresManualReview, instance.Status)
	// All compensators still run even after one fails.
	assert.Equal(t, []string{"exec:one", "exec:two", "exec:three", "comp:two", "comp:one"}, log)
	assert.Contains(t, instance.Error, "boom", "the original failure is preserved, not the compensation error")
}

func TestSagaResume_SkipsCompletedSteps(t *testing.T) {
	repo := permissiveSagaRepo()
	orchestrator := services.NewSagaOrchestrator(repo)
	ctx := context.Background()

	saga := &domain.SagaInstance{
		SagaID:      "saga-1",
		SagaType:    "test_saga",
		CurrentStep: 1,
		Payload:     json.RawMessage(`{}`),
		Status:      domain.SagaRunning,
	}
	repo.On("FindSagaByID", ctx, "saga-1").Return(saga, nil).Once()

	var log []string
	steps := []portssvc.SagaStep{
		&fakeStep{name: "one", log: &log},
		&fakeStep{name: "two", log: &log},
	}

	instance, err := orchestrator.Resume(ctx, "saga-1", steps)

	require.NoError(t, err)
	assert.Equal(t, domain.SagaCompleted, instance.Status)
	assert.Equal(t, []string{"exec:two"}, log, "completed steps are not re-executed")
}

func TestSagaResume_TerminalSagaUntouched(t *testing.T) {
	repo := new(MockSagaRepository)
	orchestrator := services.NewSagaOrchestrator(repo)
	ctx := context.Background()

	saga := &domain.SagaInstance{
		SagaID:  "saga-done",
		Status:  domain.SagaCompleted,
		Payload: json.RawMessage(`{}`),
	}
	repo.On("FindSagaByID", ctx, "saga-done").Return(saga, nil).Once()

	var log []string
	instance, err := orchestrator.Resume(ctx, "saga-done", []portssvc.SagaStep{&fakeStep{name: "one", log: &log}})

	require.NoError(t, err)
	assert.Equal(t, domain.SagaCompleted, instance.Status)
	assert.Empty(t, log)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSagaRun_ProgressPersistFailureCompensatesCompletedStep(t *testing.T) {
	repo := new(MockSagaRepository)
	repo.On("SaveSaga", mock.Anything, mock.Anything).Return(nil)
	repo.On("Heartbeat", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateProgress", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	orchestrator := services.NewSagaOrchestrator(repo)

	var log []string
	steps := []portssvc.SagaStep{
		&fakeStep{name: "one", log: &log},
		&fakeStep{name: "two", log: &log},
	}

	instance, err := orchestrator.Run(context.Background(), "test_saga", json.RawMessage(`{}`), steps)

	require.NoError(t, err)
	assert.Equal(t, domain.SagaFailed, instance.Status)
	// The step's durable effects exist even though the pointer write failed,
	// so the step itself is compensated.
	assert.Equal(t, []string{"exec:one", "comp:one"}, log)
}
