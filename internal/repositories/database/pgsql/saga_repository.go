package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
)

type PgxSagaRepository struct {
	BaseRepository
}

// newPgxSagaRepository creates a new repository for saga instances.
func newPgxSagaRepository(pool *pgxpool.Pool) portsrepo.SagaRepositoryFacade {
	return &PgxSagaRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SagaRepositoryFacade = (*PgxSagaRepository)(nil)

const sagaColumns = `saga_id, saga_type, current_step, payload, status, last_heartbeat, error, created_at, created_by, last_updated_at, last_updated_by`

// SaveSaga inserts the initial saga record.
func (r *PgxSagaRepository) SaveSaga(ctx context.Context, saga domain.SagaInstance) error {
	query := fmt.Sprintf(`INSERT INTO saga_instances (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, sagaColumns)
	_, err := r.Pool.Exec(ctx, query,
		saga.SagaID, saga.SagaType, saga.CurrentStep, saga.Payload, string(saga.Status),
		saga.LastHeartbeat, saga.Error,
		saga.CreatedAt, saga.CreatedBy, saga.LastUpdatedAt, saga.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert saga instance", err)
	}
	return nil
}

func (r *PgxSagaRepository) FindSagaByID(ctx context.Context, sagaID string) (*domain.SagaInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM saga_instances WHERE saga_id = $1`, sagaColumns)

	var m models.SagaInstance
	err := r.Pool.QueryRow(ctx, query, sagaID).Scan(
		&m.SagaID, &m.SagaType, &m.CurrentStep, &m.Payload, &m.Status,
		&m.LastHeartbeat, &m.Error,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: saga %s", apperrors.ErrNotFound, sagaID)
		}
		return nil, apperrors.NewAppError(500, "failed to query saga instance", err)
	}

	saga := domain.SagaInstance{
		SagaID:        m.SagaID,
		SagaType:      m.SagaType,
		CurrentStep:   m.CurrentStep,
		Payload:       m.Payload,
		Status:        domain.SagaStatus(m.Status),
		LastHeartbeat: m.LastHeartbeat,
		Error:         m.Error,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	return &saga, nil
}

// UpdateProgress persists the payload and step pointer after a completed step.
func (r *PgxSagaRepository) UpdateProgress(ctx context.Context, sagaID string, step int, payload json.RawMessage, at time.Time) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE saga_instances SET current_step = $1, payload = $2, last_updated_at = $3 WHERE saga_id = $4`,
		step, payload, at, sagaID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update saga progress", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: saga %s", apperrors.ErrNotFound, sagaID)
	}
	return nil
}

// UpdateStatus transitions the saga's lifecycle state.
func (r *PgxSagaRepository) UpdateStatus(ctx context.Context, sagaID string, status domain.SagaStatus, errMsg string, at time.Time) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE saga_instances SET status = $1, error = $2, last_updated_at = $3 WHERE saga_id = $4`,
		string(status), errMsg, at, sagaID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update saga status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: saga %s", apperrors.ErrNotFound, sagaID)
	}
	return nil
}

// Heartbeat refreshes last_heartbeat so a reaper can spot stuck sagas.
func (r *PgxSagaRepository) Heartbeat(ctx context.Context, sagaID string, at time.Time) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE saga_instances SET last_heartbeat = $1 WHERE saga_id = $2`,
		at, sagaID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update saga heartbeat", err)
	}
	return nil
}
