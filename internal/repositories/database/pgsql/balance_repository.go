package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for materialized
// dimensional balances and posting sums.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

// GetBalance returns the materialized balance for one dimension. A dimension
// with no postings yet reads as zero.
func (r *PgxBalanceRepository) GetBalance(ctx context.Context, tenantID, propertyID string) (*domain.DimensionalBalance, error) {
	var m models.DimensionalBalance
	err := r.Pool.QueryRow(ctx,
		`SELECT tenant_id, property_id, balance, last_updated_at
		 FROM dimensional_balances WHERE tenant_id = $1 AND property_id = $2`,
		tenantID, propertyID,
	).Scan(&m.TenantID, &m.PropertyID, &m.Balance, &m.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.DimensionalBalance{
				TenantID:   tenantID,
				PropertyID: propertyID,
				Balance:    decimal.Zero,
			}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to query dimensional balance", err)
	}
	balance := mapping.ToDomainDimensionalBalance(m)
	return &balance, nil
}

// GetBalancesForTenant returns every property dimension for a tenant.
func (r *PgxBalanceRepository) GetBalancesForTenant(ctx context.Context, tenantID string) ([]domain.DimensionalBalance, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT tenant_id, property_id, balance, last_updated_at
		 FROM dimensional_balances WHERE tenant_id = $1 ORDER BY property_id ASC`,
		tenantID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query tenant balances", err)
	}
	defer rows.Close()

	var balances []domain.DimensionalBalance
	for rows.Next() {
		var m models.DimensionalBalance
		if err := rows.Scan(&m.TenantID, &m.PropertyID, &m.Balance, &m.LastUpdatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance row", err)
		}
		balances = append(balances, mapping.ToDomainDimensionalBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance rows", err)
	}
	return balances, nil
}

// SumPostings recomputes the dimension balance directly from the journal.
func (r *PgxBalanceRepository) SumPostings(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM journal_postings
		 WHERE tenant_id = $1 AND property_id = $2`,
		tenantID, propertyID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum postings", err)
	}
	return sum, nil
}

// SumPostingsAfter sums tenant-dimension postings whose entry is dated
// strictly after the given instant.
func (r *PgxBalanceRepository) SumPostingsAfter(ctx context.Context, tenantID, propertyID string, after time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.amount), 0)
		 FROM journal_postings p
		 JOIN journal_entries e ON e.entry_id = p.entry_id
		 WHERE p.tenant_id = $1 AND p.property_id = $2 AND e.entry_date > $3`,
		tenantID, propertyID, after,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum postings after date", err)
	}
	return sum, nil
}
