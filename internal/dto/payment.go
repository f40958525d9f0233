package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartPaymentRequest is the inbound contract called by the external
// payment-confirmation handler once a gateway confirms funds.
type StartPaymentRequest struct {
	PaymentID         string          `json:"paymentId,omitempty"`
	TenantID          string          `json:"tenantId" binding:"required"`
	PropertyID        string          `json:"propertyId" binding:"required"`
	LeaseID           string          `json:"leaseId" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate       time.Time       `json:"paymentDate" binding:"required"`
	PaymentMethod     string          `json:"paymentMethod" binding:"required"`
	ExternalReference *string         `json:"externalReference,omitempty"`
	Memo              string          `json:"memo,omitempty"`
	// StateCode is the property's jurisdiction used for late-fee compliance,
	// e.g. "NC" or "NC:CHARLOTTE".
	StateCode string `json:"stateCode" binding:"required"`
}

// PaymentSagaResult is the caller-visible outcome of a payment saga. It is
// also the value stored under the idempotency key.
type PaymentSagaResult struct {
	SagaID          string           `json:"sagaId"`
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
	PaymentID       string           `json:"paymentId,omitempty"`
	RemainingCredit *decimal.Decimal `json:"remainingCredit,omitempty"`
}
