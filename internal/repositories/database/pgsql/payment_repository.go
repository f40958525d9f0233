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

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payments and tenant
// credits.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, tenant_id, property_id, lease_id, amount, payment_date, payment_method, external_reference, memo, created_at, created_by, last_updated_at, last_updated_by`

// SavePayment inserts a new payment row.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := fmt.Sprintf(`INSERT INTO payments (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, paymentColumns)
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID, m.TenantID, m.PropertyID, m.LeaseID, m.Amount,
		m.PaymentDate, m.PaymentMethod, m.ExternalReference, m.Memo,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment", err)
	}
	return nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE payment_id = $1`, paymentColumns)

	var m models.Payment
	err := r.Pool.QueryRow(ctx, query, paymentID).Scan(
		&m.PaymentID, &m.TenantID, &m.PropertyID, &m.LeaseID, &m.Amount,
		&m.PaymentDate, &m.PaymentMethod, &m.ExternalReference, &m.Memo,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, apperrors.NewAppError(500, "failed to query payment", err)
	}
	payment := mapping.ToDomainPayment(m)
	return &payment, nil
}

// SaveCredit records an overpayment remainder for a tenant.
func (r *PgxPaymentRepository) SaveCredit(ctx context.Context, credit domain.TenantCredit) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO tenant_credits (credit_id, tenant_id, property_id, payment_id, amount, created_at, created_by, last_updated_at, last_updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		credit.CreditID, credit.TenantID, credit.PropertyID, credit.PaymentID, credit.Amount,
		credit.CreatedAt, credit.CreatedBy, credit.LastUpdatedAt, credit.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert tenant credit", err)
	}
	return nil
}

// DeleteCreditByPaymentID removes the credit recorded for a payment. Saga
// compensation is the only caller.
func (r *PgxPaymentRepository) DeleteCreditByPaymentID(ctx context.Context, paymentID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM tenant_credits WHERE payment_id = $1`, paymentID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete tenant credit", err)
	}
	return nil
}
