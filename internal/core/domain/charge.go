package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeType classifies a tenant obligation.
type ChargeType string

const (
	ChargeRent    ChargeType = "rent"
	ChargeLateFee ChargeType = "late_fee"
	ChargeUtility ChargeType = "utility"
	ChargeDeposit ChargeType = "deposit"
	ChargeOther   ChargeType = "other"
)

// TenantCharge is an obligation owed by a tenant. Amount is the original
// charged amount and never changes; BalanceDue decreases as payments are
// allocated and only increases again during saga compensation. Charges are
// kept forever for audit; a zero balance means satisfied.
type TenantCharge struct {
	ChargeID       string          `json:"chargeID"` // Primary Key (UUID)
	TenantID       string          `json:"tenantID"`
	PropertyID     string          `json:"propertyID"`
	LeaseID        *string         `json:"leaseID,omitempty"`
	ChargeType     ChargeType      `json:"chargeType"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
	ChargeDate     time.Time       `json:"chargeDate"`
	DueDate        time.Time       `json:"dueDate"`
	JournalEntryID string          `json:"journalEntryID"` // Entry that posted this charge
	AuditFields
}
