package repositories

import (
	"context"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ChargeRepositoryFacade persists tenant charges and payment allocations.
type ChargeRepositoryFacade interface {
	SaveCharge(ctx context.Context, charge domain.TenantCharge) error
	FindChargeByID(ctx context.Context, chargeID string) (*domain.TenantCharge, error)

	// FindOutstandingCharges returns charges with balance_due > 0 ordered by
	// charge_date ascending (oldest first), the ordering FIFO allocation
	// depends on. An empty propertyID leaves the query unscoped by property.
	FindOutstandingCharges(ctx context.Context, tenantID, propertyID string) ([]domain.TenantCharge, error)

	// ApplyPaymentFIFO locks the tenant's outstanding charges (oldest first),
	// re-reads balance_due under the lock, applies the payment FIFO and
	// records the allocations, all in one transaction. It returns the
	// recorded allocations together with the unapplied remainder.
	ApplyPaymentFIFO(ctx context.Context, payment domain.Payment, entryID string, actor string, at time.Time) ([]domain.PaymentAllocation, decimal.Decimal, error)

	// RevertAllocations restores balance_due on every charge touched by the
	// payment and deletes its allocations. Used only by saga compensation.
	RevertAllocations(ctx context.Context, paymentID string, actor string, at time.Time) error

	FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error)

	// DeleteCharge removes a charge record. Only saga compensation of a fee
	// assessment uses this; posted business charges are never deleted.
	DeleteCharge(ctx context.Context, chargeID string) error

	// FindAllOutstandingCharges returns every outstanding charge across the
	// portfolio, for the portfolio aging summary.
	FindAllOutstandingCharges(ctx context.Context) ([]domain.TenantCharge, error)
}

// PaymentRepositoryFacade persists payments and tenant credits.
type PaymentRepositoryFacade interface {
	SavePayment(ctx context.Context, payment domain.Payment) error
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	SaveCredit(ctx context.Context, credit domain.TenantCredit) error
	// DeleteCreditByPaymentID removes the credit recorded for a payment.
	// Used only by saga compensation.
	DeleteCreditByPaymentID(ctx context.Context, paymentID string) error
}
