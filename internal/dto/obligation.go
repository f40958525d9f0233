package dto

import (
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TenantBalanceResponse is the O(1) materialized balance read.
type TenantBalanceResponse struct {
	TenantID   string          `json:"tenantID"`
	PropertyID string          `json:"propertyID,omitempty"` // empty when summed across properties
	Balance    decimal.Decimal `json:"balance"`
}

// LedgerLineResponse is one ledger row with its running balance.
type LedgerLineResponse struct {
	EntryDate      time.Time       `json:"entryDate"`
	EntryType      string          `json:"entryType"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	PropertyID     string          `json:"propertyID"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// TenantLedgerResponse is a windowed, paginated tenant ledger view.
type TenantLedgerResponse struct {
	TenantID  string               `json:"tenantID"`
	Lines     []LedgerLineResponse `json:"lines"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ChargeResponse is one tenant charge.
type ChargeResponse struct {
	ChargeID   string          `json:"chargeID"`
	TenantID   string          `json:"tenantID"`
	PropertyID string          `json:"propertyID"`
	ChargeType string          `json:"chargeType"`
	Amount     decimal.Decimal `json:"amount"`
	BalanceDue decimal.Decimal `json:"balanceDue"`
	ChargeDate time.Time       `json:"chargeDate"`
	DueDate    time.Time       `json:"dueDate"`
}

// PostChargeRequest creates a new tenant obligation with its journal entry.
type PostChargeRequest struct {
	TenantID    string          `json:"tenantID" binding:"required"`
	PropertyID  string          `json:"propertyID" binding:"required"`
	LeaseID     *string         `json:"leaseID,omitempty"`
	ChargeType  string          `json:"chargeType" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ChargeDate  time.Time       `json:"chargeDate" binding:"required"`
	DueDate     time.Time       `json:"dueDate" binding:"required"`
	Description string          `json:"description,omitempty"`
}

// AgingRowResponse is one outstanding charge with its aging bucket.
type AgingRowResponse struct {
	Charge      ChargeResponse `json:"charge"`
	DaysOverdue int            `json:"daysOverdue"`
	Bucket      string         `json:"bucket"`
}

// AgingReportResponse is a tenant's aging report.
type AgingReportResponse struct {
	TenantID string                     `json:"tenantID"`
	AsOf     time.Time                  `json:"asOf"`
	Rows     []AgingRowResponse         `json:"rows"`
	Totals   map[string]decimal.Decimal `json:"totals"`
	Total    decimal.Decimal            `json:"total"`
}

// PortfolioAgingRowResponse aggregates aging totals for one property.
type PortfolioAgingRowResponse struct {
	PropertyID string                     `json:"propertyID"`
	Totals     map[string]decimal.Decimal `json:"totals"`
	Total      decimal.Decimal            `json:"total"`
}

// PortfolioAgingResponse is the portfolio-wide aging summary.
type PortfolioAgingResponse struct {
	AsOf time.Time                   `json:"asOf"`
	Rows []PortfolioAgingRowResponse `json:"rows"`
}

// StatementResponse is a tenant statement for a period.
type StatementResponse struct {
	TenantID       string               `json:"tenantID"`
	PropertyID     string               `json:"propertyID"`
	PeriodStart    time.Time            `json:"periodStart"`
	PeriodEnd      time.Time            `json:"periodEnd"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
	ClosingBalance decimal.Decimal      `json:"closingBalance"`
	TotalCharges   decimal.Decimal      `json:"totalCharges"`
	TotalPayments  decimal.Decimal      `json:"totalPayments"`
	Lines          []LedgerLineResponse `json:"lines"`
}

// CreatePaymentPlanRequest schedules an outstanding balance over installments.
// A nil TotalAmount defaults to the tenant's full outstanding balance.
type CreatePaymentPlanRequest struct {
	PropertyID       string           `json:"propertyID" binding:"required"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	NumberOfPayments int              `json:"numberOfPayments" binding:"required,min=1"`
	Frequency        string           `json:"frequency" binding:"required,oneof=weekly biweekly monthly"`
	StartDate        time.Time        `json:"startDate" binding:"required"`
}

// InstallmentResponse is one scheduled installment.
type InstallmentResponse struct {
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
}

// PaymentPlanResponse is a created payment plan with its schedule.
type PaymentPlanResponse struct {
	PlanID           string                `json:"planID"`
	TenantID         string                `json:"tenantID"`
	PropertyID       string                `json:"propertyID"`
	TotalAmount      decimal.Decimal       `json:"totalAmount"`
	NumberOfPayments int                   `json:"numberOfPayments"`
	Frequency        string                `json:"frequency"`
	StartDate        time.Time             `json:"startDate"`
	Installments     []InstallmentResponse `json:"installments"`
}

// ToChargeResponse converts a domain charge to its response form.
func ToChargeResponse(c *domain.TenantCharge) ChargeResponse {
	return ChargeResponse{
		ChargeID:   c.ChargeID,
		TenantID:   c.TenantID,
		PropertyID: c.PropertyID,
		ChargeType: string(c.ChargeType),
		Amount:     c.Amount,
		BalanceDue: c.BalanceDue,
		ChargeDate: c.ChargeDate,
		DueDate:    c.DueDate,
	}
}

// ToChargeResponses converts a slice of domain charges.
func ToChargeResponses(charges []domain.TenantCharge) []ChargeResponse {
	out := make([]ChargeResponse, len(charges))
	for i := range charges {
		out[i] = ToChargeResponse(&charges[i])
	}
	return out
}

// ToLedgerLineResponse converts a domain ledger line.
func ToLedgerLineResponse(l *domain.LedgerLine) LedgerLineResponse {
	return LedgerLineResponse{
		EntryDate:      l.EntryDate,
		EntryType:      string(l.EntryType),
		Description:    l.Description,
		Amount:         l.Posting.Amount,
		PropertyID:     l.Posting.PropertyID,
		RunningBalance: l.RunningBalance,
	}
}

// ToLedgerLineResponses converts a slice of domain ledger lines.
func ToLedgerLineResponses(lines []domain.LedgerLine) []LedgerLineResponse {
	out := make([]LedgerLineResponse, len(lines))
	for i := range lines {
		out[i] = ToLedgerLineResponse(&lines[i])
	}
	return out
}

// ToPaymentPlanResponse converts a domain payment plan with installments.
func ToPaymentPlanResponse(p *domain.PaymentPlan) PaymentPlanResponse {
	installments := make([]InstallmentResponse, len(p.Installments))
	for i, inst := range p.Installments {
		installments[i] = InstallmentResponse{
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			Amount:            inst.Amount,
			Status:            string(inst.Status),
		}
	}
	return PaymentPlanResponse{
		PlanID:           p.PlanID,
		TenantID:         p.TenantID,
		PropertyID:       p.PropertyID,
		TotalAmount:      p.TotalAmount,
		NumberOfPayments: p.NumberOfPayments,
		Frequency:        string(p.Frequency),
		StartDate:        p.StartDate,
		Installments:     installments,
	}
}

// ToAgingReportResponse converts a domain aging report.
func ToAgingReportResponse(r *domain.AgingReport) AgingReportResponse {
	rows := make([]AgingRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = AgingRowResponse{
			Charge:      ToChargeResponse(&row.Charge),
			DaysOverdue: row.DaysOverdue,
			Bucket:      string(row.Bucket),
		}
	}
	totals := make(map[string]decimal.Decimal, len(r.Totals))
	for bucket, amount := range r.Totals {
		totals[string(bucket)] = amount
	}
	return AgingReportResponse{
		TenantID: r.TenantID,
		AsOf:     r.AsOf,
		Rows:     rows,
		Totals:   totals,
		Total:    r.Total,
	}
}

// ToPortfolioAgingRowResponse converts one property's aging totals.
func ToPortfolioAgingRowResponse(r *domain.PortfolioAgingRow) PortfolioAgingRowResponse {
	totals := make(map[string]decimal.Decimal, len(r.Totals))
	for bucket, amount := range r.Totals {
		totals[string(bucket)] = amount
	}
	return PortfolioAgingRowResponse{
		PropertyID: r.PropertyID,
		Totals:     totals,
		Total:      r.Total,
	}
}

// ToStatementResponse converts a domain statement.
func ToStatementResponse(s *domain.Statement) StatementResponse {
	return StatementResponse{
		TenantID:       s.TenantID,
		PropertyID:     s.PropertyID,
		PeriodStart:    s.PeriodStart,
		PeriodEnd:      s.PeriodEnd,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		TotalCharges:   s.TotalCharges,
		TotalPayments:  s.TotalPayments,
		Lines:          ToLedgerLineResponses(s.Lines),
	}
}
