package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxPaymentPlanRepository struct {
	BaseRepository
}

// newPgxPaymentPlanRepository creates a new repository for payment plans and
// their installment schedules.
func newPgxPaymentPlanRepository(pool *pgxpool.Pool) portsrepo.PaymentPlanRepositoryFacade {
	return &PgxPaymentPlanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentPlanRepositoryFacade = (*PgxPaymentPlanRepository)(nil)

// SavePlan writes the plan and all its installments in one transaction.
func (r *PgxPaymentPlanRepository) SavePlan(ctx context.Context, plan domain.PaymentPlan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelPaymentPlan(plan)
	_, err = tx.Exec(ctx,
		`INSERT INTO payment_plans (plan_id, tenant_id, property_id, total_amount, number_of_payments, frequency, start_date,
		                            created_at, created_by, last_updated_at, last_updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.PlanID, m.TenantID, m.PropertyID, m.TotalAmount, m.NumberOfPayments, m.Frequency, m.StartDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment plan", err)
	}

	batch := &pgx.Batch{}
	for _, inst := range plan.Installments {
		batch.Queue(
			`INSERT INTO payment_plan_installments (installment_id, plan_id, installment_number, due_date, amount, status)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			inst.InstallmentID, inst.PlanID, inst.InstallmentNumber, inst.DueDate, inst.Amount, string(inst.Status),
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range plan.Installments {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert installment", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to flush installment batch", err)
	}

	return r.Commit(ctx, tx)
}

// FindPlanByID returns the plan with its installments ordered by number.
func (r *PgxPaymentPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.PaymentPlan, error) {
	var m models.PaymentPlan
	err := r.Pool.QueryRow(ctx,
		`SELECT plan_id, tenant_id, property_id, total_amount, number_of_payments, frequency, start_date,
		        created_at, created_by, last_updated_at, last_updated_by
		 FROM payment_plans WHERE plan_id = $1`, planID,
	).Scan(
		&m.PlanID, &m.TenantID, &m.PropertyID, &m.TotalAmount, &m.NumberOfPayments, &m.Frequency, &m.StartDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment plan %s", apperrors.ErrNotFound, planID)
		}
		return nil, apperrors.NewAppError(500, "failed to query payment plan", err)
	}
	plan := mapping.ToDomainPaymentPlan(m)

	rows, err := r.Pool.Query(ctx,
		`SELECT installment_id, plan_id, installment_number, due_date, amount, status
		 FROM payment_plan_installments WHERE plan_id = $1 ORDER BY installment_number ASC`, planID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var im models.Installment
		if err := rows.Scan(&im.InstallmentID, &im.PlanID, &im.InstallmentNumber, &im.DueDate, &im.Amount, &im.Status); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan installment row", err)
		}
		plan.Installments = append(plan.Installments, mapping.ToDomainInstallment(im))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating installment rows", err)
	}
	return &plan, nil
}
