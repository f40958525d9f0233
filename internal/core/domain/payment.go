package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one confirmed inbound payment from an external gateway.
// Created exactly once per confirmation; immutable.
type Payment struct {
	PaymentID         string          `json:"paymentID"` // Primary Key (UUID)
	TenantID          string          `json:"tenantID"`
	PropertyID        string          `json:"propertyID"`
	LeaseID           string          `json:"leaseID"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"paymentDate"`
	PaymentMethod     string          `json:"paymentMethod"`
	ExternalReference *string         `json:"externalReference,omitempty"`
	Memo              string          `json:"memo,omitempty"`
	AuditFields
}

// PaymentAllocation links a payment to a charge it was applied against.
// Created during FIFO application; deleted only during saga compensation.
type PaymentAllocation struct {
	AllocationID   string          `json:"allocationID"` // Primary Key (UUID)
	PaymentID      string          `json:"paymentID"`    // FK -> Payment
	ChargeID       string          `json:"chargeID"`     // FK -> TenantCharge
	AmountApplied  decimal.Decimal `json:"amountApplied"`
	AppliedDate    time.Time       `json:"appliedDate"`
	JournalEntryID string          `json:"journalEntryID"`
	AuditFields
}

// TenantCredit records an overpayment remainder held for a tenant after FIFO
// allocation exhausted all outstanding charges.
type TenantCredit struct {
	CreditID   string          `json:"creditID"` // Primary Key (UUID)
	TenantID   string          `json:"tenantID"`
	PropertyID string          `json:"propertyID"`
	PaymentID  string          `json:"paymentID"`
	Amount     decimal.Decimal `json:"amount"`
	AuditFields
}
