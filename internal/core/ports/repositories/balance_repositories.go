package repositories

import (
	"context"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceRepositoryFacade reads the materialized dimensional balances and the
// posting sums they are derived from.
type BalanceRepositoryFacade interface {
	// GetBalance returns the materialized balance for one dimension; a
	// dimension with no postings yet reads as zero, not ErrNotFound.
	GetBalance(ctx context.Context, tenantID, propertyID string) (*domain.DimensionalBalance, error)

	// GetBalancesForTenant returns every property dimension for a tenant.
	GetBalancesForTenant(ctx context.Context, tenantID string) ([]domain.DimensionalBalance, error)

	// SumPostings recomputes sum(postings.amount) for the dimension directly
	// from the journal, used to verify the materialized balance.
	SumPostings(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error)

	// SumPostingsAfter sums tenant-dimension postings dated strictly after
	// the given instant, used to derive balances as of a past date.
	SumPostingsAfter(ctx context.Context, tenantID, propertyID string, after time.Time) (decimal.Decimal, error)
}
