package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// LedgerQueryFilters narrows tenant ledger reads. Zero values leave the
// corresponding dimension unfiltered.
type LedgerQueryFilters struct {
	PropertyID string
	From       *time.Time
	To         *time.Time
	Limit      int
	NextToken  *string
}

// ReportingRepositoryFacade serves read-side ledger queries: postings joined
// with their entries, ordered by entry date descending.
type ReportingRepositoryFacade interface {
	// FindTenantPostings returns tenant-dimension postings newest-first with
	// keyset pagination. Running balances are computed by the caller.
	FindTenantPostings(ctx context.Context, tenantID string, filters LedgerQueryFilters) ([]domain.LedgerLine, *string, error)

	// FindTenantPostingsInWindow returns all tenant-dimension postings for a
	// dimension within (start, end], newest-first, without pagination.
	FindTenantPostingsInWindow(ctx context.Context, tenantID, propertyID string, start, end time.Time) ([]domain.LedgerLine, error)

	// SumPostingsNewerThan sums tenant-dimension postings strictly newer
	// than the keyset position (entry_date, created_at), used to fold
	// running balances backward across page boundaries.
	SumPostingsNewerThan(ctx context.Context, tenantID, propertyID string, entryDate, createdAt time.Time) (decimal.Decimal, error)
}

// PaymentPlanRepositoryFacade persists payment plans with their installments.
type PaymentPlanRepositoryFacade interface {
	// SavePlan writes the plan and all installments in one transaction.
	SavePlan(ctx context.Context, plan domain.PaymentPlan) error
	FindPlanByID(ctx context.Context, planID string) (*domain.PaymentPlan, error)
}
