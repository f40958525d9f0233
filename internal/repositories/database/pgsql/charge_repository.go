package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/accounting"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxChargeRepository struct {
	BaseRepository
}

// newPgxChargeRepository creates a new repository for tenant charges and
// payment allocations.
func newPgxChargeRepository(pool *pgxpool.Pool) portsrepo.ChargeRepositoryFacade {
	return &PgxChargeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ChargeRepositoryFacade = (*PgxChargeRepository)(nil)

const tenantChargeColumns = `charge_id, tenant_id, property_id, lease_id, charge_type, amount, balance_due, charge_date, due_date, journal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const paymentAllocationColumns = `allocation_id, payment_id, charge_id, amount_applied, applied_date, journal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanTenantCharge(row pgx.Row) (*models.TenantCharge, error) {
	var m models.TenantCharge
	err := row.Scan(
		&m.ChargeID, &m.TenantID, &m.PropertyID, &m.LeaseID, &m.ChargeType,
		&m.Amount, &m.BalanceDue, &m.ChargeDate, &m.DueDate, &m.JournalEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveCharge inserts a new charge row.
func (r *PgxChargeRepository) SaveCharge(ctx context.Context, charge domain.TenantCharge) error {
	m := mapping.ToModelTenantCharge(charge)
	query := fmt.Sprintf(`INSERT INTO tenant_charges (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, tenantChargeColumns)
	_, err := r.Pool.Exec(ctx, query,
		m.ChargeID, m.TenantID, m.PropertyID, m.LeaseID, m.ChargeType,
		m.Amount, m.BalanceDue, m.ChargeDate, m.DueDate, m.JournalEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert tenant charge", err)
	}
	return nil
}

func (r *PgxChargeRepository) FindChargeByID(ctx context.Context, chargeID string) (*domain.TenantCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenant_charges WHERE charge_id = $1`, tenantChargeColumns)
	m, err := scanTenantCharge(r.Pool.QueryRow(ctx, query, chargeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: charge %s", apperrors.ErrNotFound, chargeID)
		}
		return nil, apperrors.NewAppError(500, "failed to query charge", err)
	}
	charge := mapping.ToDomainTenantCharge(*m)
	return &charge, nil
}

// FindOutstandingCharges returns charges with a balance due, oldest first.
func (r *PgxChargeRepository) FindOutstandingCharges(ctx context.Context, tenantID, propertyID string) ([]domain.TenantCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenant_charges WHERE tenant_id = $1 AND balance_due > 0`, tenantChargeColumns)
	args := []any{tenantID}
	if propertyID != "" {
		query += ` AND property_id = $2`
		args = append(args, propertyID)
	}
	query += ` ORDER BY charge_date ASC, created_at ASC`

	return r.queryCharges(ctx, query, args...)
}

// FindAllOutstandingCharges returns every outstanding charge in the portfolio.
func (r *PgxChargeRepository) FindAllOutstandingCharges(ctx context.Context) ([]domain.TenantCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenant_charges WHERE balance_due > 0 ORDER BY property_id ASC, charge_date ASC, created_at ASC`, tenantChargeColumns)
	return r.queryCharges(ctx, query)
}

func (r *PgxChargeRepository) queryCharges(ctx context.Context, query string, args ...any) ([]domain.TenantCharge, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query charges", err)
	}
	defer rows.Close()

	var ms []models.TenantCharge
	for rows.Next() {
		m, err := scanTenantCharge(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan charge row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating charge rows", err)
	}
	return mapping.ToDomainTenantChargeSlice(ms), nil
}

// ApplyPaymentFIFO locks the tenant's outstanding charges oldest-first,
// re-reads balances under the lock and applies the payment. Locking before
// allocating means two concurrent payments for the same tenant serialize here
// instead of double-spending a charge's balance.
func (r *PgxChargeRepository) ApplyPaymentFIFO(ctx context.Context, payment domain.Payment, entryID string, actor string, at time.Time) ([]domain.PaymentAllocation, decimal.Decimal, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := fmt.Sprintf(
		`SELECT %s FROM tenant_charges
		 WHERE tenant_id = $1 AND property_id = $2 AND balance_due > 0
		 ORDER BY charge_date ASC, created_at ASC
		 FOR UPDATE`, tenantChargeColumns)
	rows, err := tx.Query(ctx, lockQuery, payment.TenantID, payment.PropertyID)
	if err != nil {
		return nil, decimal.Zero, apperrors.NewAppError(500, "failed to lock outstanding charges", err)
	}

	var charges []domain.TenantCharge
	for rows.Next() {
		m, err := scanTenantCharge(rows)
		if err != nil {
			rows.Close()
			return nil, decimal.Zero, apperrors.NewAppError(500, "failed to scan charge row", err)
		}
		charges = append(charges, mapping.ToDomainTenantCharge(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, decimal.Zero, apperrors.NewAppError(500, "error iterating charge rows", err)
	}
	rows.Close()

	plans, remaining := accounting.AllocateFIFO(charges, payment.Amount)

	allocations := make([]domain.PaymentAllocation, 0, len(plans))
	allocQuery := fmt.Sprintf(`INSERT INTO payment_allocations (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, paymentAllocationColumns)
	for _, plan := range plans {
		tag, err := tx.Exec(ctx,
			`UPDATE tenant_charges
			 SET balance_due = balance_due - $1, last_updated_at = $2, last_updated_by = $3
			 WHERE charge_id = $4 AND balance_due >= $1`,
			plan.Amount, at, actor, plan.ChargeID,
		)
		if err != nil {
			return nil, decimal.Zero, apperrors.NewAppError(500, "failed to reduce charge balance", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: charge %s balance changed during allocation", apperrors.ErrConflict, plan.ChargeID)
		}

		allocation := domain.PaymentAllocation{
			AllocationID:   uuid.NewString(),
			PaymentID:      payment.PaymentID,
			ChargeID:       plan.ChargeID,
			AmountApplied:  plan.Amount,
			AppliedDate:    at,
			JournalEntryID: entryID,
			AuditFields:    domain.NewAuditFields(actor, at),
		}
		_, err = tx.Exec(ctx, allocQuery,
			allocation.AllocationID, allocation.PaymentID, allocation.ChargeID,
			allocation.AmountApplied, allocation.AppliedDate, allocation.JournalEntryID,
			allocation.CreatedAt, allocation.CreatedBy, allocation.LastUpdatedAt, allocation.LastUpdatedBy,
		)
		if err != nil {
			return nil, decimal.Zero, apperrors.NewAppError(500, "failed to insert payment allocation", err)
		}
		allocations = append(allocations, allocation)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, decimal.Zero, err
	}
	return allocations, remaining, nil
}

// RevertAllocations restores the balance on every charge the payment touched
// and deletes the allocation rows, in one transaction.
func (r *PgxChargeRepository) RevertAllocations(ctx context.Context, paymentID string, actor string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx,
		`UPDATE tenant_charges c
		 SET balance_due = c.balance_due + a.amount_applied,
		     last_updated_at = $2, last_updated_by = $3
		 FROM payment_allocations a
		 WHERE a.charge_id = c.charge_id AND a.payment_id = $1`,
		paymentID, at, actor,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to restore charge balances", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM payment_allocations WHERE payment_id = $1`, paymentID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete payment allocations", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxChargeRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_allocations WHERE payment_id = $1 ORDER BY applied_date ASC, created_at ASC`, paymentAllocationColumns)
	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payment allocations", err)
	}
	defer rows.Close()

	var allocations []domain.PaymentAllocation
	for rows.Next() {
		var m models.PaymentAllocation
		err := rows.Scan(
			&m.AllocationID, &m.PaymentID, &m.ChargeID, &m.AmountApplied,
			&m.AppliedDate, &m.JournalEntryID,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row", err)
		}
		allocations = append(allocations, mapping.ToDomainPaymentAllocation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows", err)
	}
	return allocations, nil
}

// DeleteCharge removes a charge row. Saga compensation of a fee assessment is
// the only caller.
func (r *PgxChargeRepository) DeleteCharge(ctx context.Context, chargeID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM tenant_charges WHERE charge_id = $1`, chargeID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete charge", err)
	}
	return nil
}
