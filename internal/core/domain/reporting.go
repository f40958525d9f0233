package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket classifies an outstanding charge by days overdue. Boundaries
// are inclusive of the upper bound: exactly 30 days overdue is Days30.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	BucketDays30  AgingBucket = "days30"
	BucketDays60  AgingBucket = "days60"
	BucketDays90  AgingBucket = "days90"
	BucketOver90  AgingBucket = "over90"
)

// BucketForDaysOverdue maps days overdue to its aging bucket.
func BucketForDaysOverdue(days int) AgingBucket {
	switch {
	case days <= 0:
		return BucketCurrent
	case days <= 30:
		return BucketDays30
	case days <= 60:
		return BucketDays60
	case days <= 90:
		return BucketDays90
	default:
		return BucketOver90
	}
}

// AgingReportRow is one outstanding charge classified into a bucket.
type AgingReportRow struct {
	Charge      TenantCharge `json:"charge"`
	DaysOverdue int          `json:"daysOverdue"`
	Bucket      AgingBucket  `json:"bucket"`
}

// AgingReport aggregates a tenant's outstanding charges by bucket.
type AgingReport struct {
	TenantID string                          `json:"tenantID"`
	AsOf     time.Time                       `json:"asOf"`
	Rows     []AgingReportRow                `json:"rows"`
	Totals   map[AgingBucket]decimal.Decimal `json:"totals"`
	Total    decimal.Decimal                 `json:"total"`
}

// PortfolioAgingRow aggregates aging totals for one property.
type PortfolioAgingRow struct {
	PropertyID string                          `json:"propertyID"`
	Totals     map[AgingBucket]decimal.Decimal `json:"totals"`
	Total      decimal.Decimal                 `json:"total"`
}

// LedgerLine is one posting in a tenant statement or ledger view, carrying
// the balance as of that posting.
type LedgerLine struct {
	Posting        JournalPosting  `json:"posting"`
	EntryDate      time.Time       `json:"entryDate"`
	EntryType      EntryType       `json:"entryType"`
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// Statement is a tenant's activity over a period. The identity
// closing == opening + charges - payments holds exactly.
type Statement struct {
	TenantID       string          `json:"tenantID"`
	PropertyID     string          `json:"propertyID"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	TotalCharges   decimal.Decimal `json:"totalCharges"`
	TotalPayments  decimal.Decimal `json:"totalPayments"`
	Lines          []LedgerLine    `json:"lines"`
}
