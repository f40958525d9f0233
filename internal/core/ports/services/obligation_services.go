package services

import (
	"context"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/dto"
)

// TenantObligationSvcFacade derives balances, statements, aging and payment
// plans from the ledger and charge records.
type TenantObligationSvcFacade interface {
	// GetTenantBalance reads the materialized balance; when propertyID is
	// empty the tenant's dimensions are summed.
	GetTenantBalance(ctx context.Context, tenantID, propertyID string) (*dto.TenantBalanceResponse, error)

	// GetTenantLedger returns postings newest-first with running balances
	// folded backward from the current balance.
	GetTenantLedger(ctx context.Context, tenantID string, filters repositories.LedgerQueryFilters) (*dto.TenantLedgerResponse, error)

	// GetOutstandingCharges returns unpaid charges oldest-first.
	GetOutstandingCharges(ctx context.Context, tenantID, propertyID string) ([]dto.ChargeResponse, error)

	// GetAgingReport buckets a tenant's outstanding charges by days overdue.
	GetAgingReport(ctx context.Context, tenantID string, asOf time.Time) (*dto.AgingReportResponse, error)

	// GetPortfolioAgingSummary aggregates aging totals per property.
	GetPortfolioAgingSummary(ctx context.Context, asOf time.Time) (*dto.PortfolioAgingResponse, error)

	// GenerateStatement builds a period statement whose closing balance
	// equals opening + charges - payments exactly.
	GenerateStatement(ctx context.Context, tenantID, propertyID string, start, end time.Time) (*dto.StatementResponse, error)

	// CreatePaymentPlan schedules an outstanding balance over installments
	// that sum exactly to the plan total.
	CreatePaymentPlan(ctx context.Context, tenantID string, req dto.CreatePaymentPlanRequest, actor string) (*dto.PaymentPlanResponse, error)

	// PostCharge creates a tenant obligation together with its balanced
	// journal entry.
	PostCharge(ctx context.Context, req dto.PostChargeRequest, actor string) (*domain.TenantCharge, error)
}
