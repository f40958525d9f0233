package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanFrequency is the cadence of payment plan installments.
type PlanFrequency string

const (
	FrequencyWeekly   PlanFrequency = "weekly"
	FrequencyBiweekly PlanFrequency = "biweekly"
	FrequencyMonthly  PlanFrequency = "monthly"
)

// InstallmentStatus tracks a single scheduled installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentMissed  InstallmentStatus = "missed"
)

// PaymentPlan spreads an outstanding balance over scheduled installments.
// The installment amounts always sum exactly to TotalAmount; any rounding
// remainder is absorbed by the final installment.
type PaymentPlan struct {
	PlanID           string          `json:"planID"` // Primary Key (UUID)
	TenantID         string          `json:"tenantID"`
	PropertyID       string          `json:"propertyID"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	NumberOfPayments int             `json:"numberOfPayments"`
	Frequency        PlanFrequency   `json:"frequency"`
	StartDate        time.Time       `json:"startDate"`
	Installments     []Installment   `json:"installments,omitempty"`
	AuditFields
}

// Installment is one scheduled payment within a plan.
type Installment struct {
	InstallmentID     string            `json:"installmentID"` // Primary Key (UUID)
	PlanID            string            `json:"planID"`        // FK -> PaymentPlan
	InstallmentNumber int               `json:"installmentNumber"`
	DueDate           time.Time         `json:"dueDate"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            InstallmentStatus `json:"status"`
}

// NextDueDate advances a due date by one plan period.
func (f PlanFrequency) NextDueDate(from time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	default:
		return from.AddDate(0, 1, 0)
	}
}
