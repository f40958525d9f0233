package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantCharge is a row of the tenant_charges table. balance_due is the only
// mutable money column in the schema; everything else is append-only.
type TenantCharge struct {
	ChargeID       string          `json:"chargeID"`
	TenantID       string          `json:"tenantID"`
	PropertyID     string          `json:"propertyID"`
	LeaseID        *string         `json:"leaseID"`
	ChargeType     string          `json:"chargeType"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
	ChargeDate     time.Time       `json:"chargeDate"`
	DueDate        time.Time       `json:"dueDate"`
	JournalEntryID string          `json:"journalEntryID"`
	AuditFields
}

// Payment is a row of the payments table.
type Payment struct {
	PaymentID         string          `json:"paymentID"`
	TenantID          string          `json:"tenantID"`
	PropertyID        string          `json:"propertyID"`
	LeaseID           string          `json:"leaseID"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"paymentDate"`
	PaymentMethod     string          `json:"paymentMethod"`
	ExternalReference *string         `json:"externalReference"`
	Memo              string          `json:"memo"`
	AuditFields
}

// PaymentAllocation is a row of the payment_allocations table.
type PaymentAllocation struct {
	AllocationID   string          `json:"allocationID"`
	PaymentID      string          `json:"paymentID"`
	ChargeID       string          `json:"chargeID"`
	AmountApplied  decimal.Decimal `json:"amountApplied"`
	AppliedDate    time.Time       `json:"appliedDate"`
	JournalEntryID string          `json:"journalEntryID"`
	AuditFields
}

// TenantCredit is a row of the tenant_credits table.
type TenantCredit struct {
	CreditID   string          `json:"creditID"`
	TenantID   string          `json:"tenantID"`
	PropertyID string          `json:"propertyID"`
	PaymentID  string          `json:"paymentID"`
	Amount     decimal.Decimal `json:"amount"`
	AuditFields
}

// PaymentPlan is a row of the payment_plans table.
type PaymentPlan struct {
	PlanID           string          `json:"planID"`
	TenantID         string          `json:"tenantID"`
	PropertyID       string          `json:"propertyID"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	NumberOfPayments int             `json:"numberOfPayments"`
	Frequency        string          `json:"frequency"`
	StartDate        time.Time       `json:"startDate"`
	AuditFields
}

// Installment is a row of the payment_plan_installments table.
type Installment struct {
	InstallmentID     string          `json:"installmentID"`
	PlanID            string          `json:"planID"`
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
}
