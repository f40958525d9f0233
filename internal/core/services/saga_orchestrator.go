package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

// sagaOrchestrator drives saga instances through their steps. Progress is
// persisted after every completed step so a restarted process resumes from
// the step pointer instead of re-running completed work. A per-saga mutex
// enforces a single writer per saga within this process; cross-process
// exclusivity comes from the idempotency layer in front of saga starts.
type sagaOrchestrator struct {
	BaseService
	sagaRepo portsrepo.SagaRepositoryFacade

	locks sync.Map // sagaID -> *sync.Mutex
}

// NewSagaOrchestrator creates a new SagaOrchestrator.
func NewSagaOrchestrator(sagaRepo portsrepo.SagaRepositoryFacade) portssvc.SagaOrchestratorFacade {
	return &sagaOrchestrator{sagaRepo: sagaRepo}
}

var _ portssvc.SagaOrchestratorFacade = (*sagaOrchestrator)(nil)

func (s *sagaOrchestrator) lockFor(sagaID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sagaID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Run persists a new saga instance and executes its steps in order. Step
// failures are absorbed into the returned instance's terminal status; the
// error return is reserved for persistence failures before any step ran.
func (s *sagaOrchestrator) Run(ctx context.Context, sagaType string, payload json.RawMessage, steps []portssvc.SagaStep) (*domain.SagaInstance, error) {
	now := time.Now()
	saga := domain.SagaInstance{
		SagaID:        uuid.NewString(),
		SagaType:      sagaType,
		CurrentStep:   0,
		Payload:       payload,
		Status:        domain.SagaRunning,
		LastHeartbeat: now,
		AuditFields:   domain.NewAuditFields("system", now),
	}

	if err := s.sagaRepo.SaveSaga(ctx, saga); err != nil {
		s.LogError(ctx, err, "Failed to persist new saga", slog.String("saga_type", sagaType))
		return nil, fmt.Errorf("failed to persist saga instance: %w", err)
	}

	mu := s.lockFor(saga.SagaID)
	mu.Lock()
	defer mu.Unlock()

	return s.drive(ctx, &saga, steps)
}

// Resume continues a saga from its persisted step pointer. Completed steps
// are not re-executed.
func (s *sagaOrchestrator) Resume(ctx context.Context, sagaID string, steps []portssvc.SagaStep) (*domain.SagaInstance, error) {
	saga, err := s.sagaRepo.FindSagaByID(ctx, sagaID)
	if err != nil {
		return nil, err
	}
	if saga.Status.IsTerminal() {
		return saga, nil
	}

	mu := s.lockFor(sagaID)
	mu.Lock()
	defer mu.Unlock()

	s.LogInfo(ctx, "Resuming saga", slog.String("saga_id", sagaID), slog.Int("from_step", saga.CurrentStep))
	return s.drive(ctx, saga, steps)
}

// drive executes steps from saga.CurrentStep onward, compensating completed
// steps in reverse order on failure. Callers must hold the saga's lock.
func (s *sagaOrchestrator) drive(ctx context.Context, saga *domain.SagaInstance, steps []portssvc.SagaStep) (*domain.SagaInstance, error) {
	for i := saga.CurrentStep; i < len(steps); i++ {
		step := steps[i]

		if err := s.sagaRepo.Heartbeat(ctx, saga.SagaID, time.Now()); err != nil {
			s.LogWarn(ctx, "Saga heartbeat failed", slog.String("saga_id", saga.SagaID), slog.String("error", err.Error()))
		}

		out, err := step.Execute(ctx, saga.Payload)
		if err != nil {
			s.LogWarn(ctx, "Saga step failed, compensating",
				slog.String("saga_id", saga.SagaID),
				slog.String("step", step.Name()),
				slog.String("error", err.Error()))
			return s.compensate(ctx, saga, steps, i, err)
		}
		if out != nil {
			saga.Payload = out
		}

		saga.CurrentStep = i + 1
		if err := s.sagaRepo.UpdateProgress(ctx, saga.SagaID, saga.CurrentStep, saga.Payload, time.Now()); err != nil {
			// The step's effects are durable even though the pointer write
			// failed, so the step itself must be compensated too.
			s.LogError(ctx, err, "Failed to persist saga progress, compensating",
				slog.String("saga_id", saga.SagaID),
				slog.String("step", step.Name()))
			return s.compensate(ctx, saga, steps, i+1, fmt.Errorf("persisting progress after step %s: %w", step.Name(), err))
		}
	}

	saga.Status = domain.SagaCompleted
	if err := s.sagaRepo.UpdateStatus(ctx, saga.SagaID, domain.SagaCompleted, "", time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark saga completed", slog.String("saga_id", saga.SagaID))
	}
	s.LogInfo(ctx, "Saga completed", slog.String("saga_id", saga.SagaID), slog.String("saga_type", saga.SagaType))
	return saga, nil
}

// compensate undoes steps [0, completed) in reverse order. Compensation is
// best-effort: a failing compensator is logged and the remaining ones still
// run, but the saga lands in requires_manual_review instead of failed.
func (s *sagaOrchestrator) compensate(ctx context.Context, saga *domain.SagaInstance, steps []portssvc.SagaStep, completed int, cause error) (*domain.SagaInstance, error) {
	saga.Error = cause.Error()
	if err := s.sagaRepo.UpdateStatus(ctx, saga.SagaID, domain.SagaCompensating, saga.Error, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark saga compensating", slog.String("saga_id", saga.SagaID))
	}

	manualReview := false
	for i := completed - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx, saga.Payload); err != nil {
			manualReview = true
			s.LogError(ctx, err, "Saga compensation step failed",
				slog.String("saga_id", saga.SagaID),
				slog.String("step", step.Name()))
			continue
		}
		s.LogInfo(ctx, "Saga step compensated", slog.String("saga_id", saga.SagaID), slog.String("step", step.Name()))
	}

	saga.Status = domain.SagaFailed
	if manualReview {
		saga.Status = domain.SagaRequiresManualReview
	}
	if err := s.sagaRepo.UpdateStatus(ctx, saga.SagaID, saga.Status, saga.Error, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark saga terminal", slog.String("saga_id", saga.SagaID))
	}
	return saga, nil
}
