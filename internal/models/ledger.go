package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds the audit columns shared by every table.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Account is a row of the accounts table (chart of accounts).
type Account struct {
	AccountID string `json:"accountID"`
	Subtype   string `json:"subtype"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	AuditFields
}

// JournalEntry is a row of the journal_entries table. Metadata is stored as
// JSONB.
type JournalEntry struct {
	EntryID           string            `json:"entryID"`
	EntryDate         time.Time         `json:"entryDate"`
	EntryType         string            `json:"entryType"`
	Description       string            `json:"description"`
	Metadata          map[string]string `json:"metadata"`
	OriginalEntryID   *string           `json:"originalEntryID"`
	ReversedByEntryID *string           `json:"reversedByEntryID"`
	AuditFields
}

// JournalPosting is a row of the journal_postings table. Amount is signed:
// positive debits, negative credits.
type JournalPosting struct {
	PostingID   string          `json:"postingID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	PropertyID  string          `json:"propertyID"`
	TenantID    *string         `json:"tenantID"`
	Description string          `json:"description"`
	AuditFields
}

// DimensionalBalance is a row of the dimensional_balances table, keyed by
// (tenant_id, property_id).
type DimensionalBalance struct {
	TenantID      string          `json:"tenantID"`
	PropertyID    string          `json:"propertyID"`
	Balance       decimal.Decimal `json:"balance"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ComplianceRule is a row of the compliance_rules table.
type ComplianceRule struct {
	RuleID        string     `json:"ruleID"`
	StateCode     string     `json:"stateCode"`
	RuleType      string     `json:"ruleType"`
	RuleKey       string     `json:"ruleKey"`
	RuleValue     string     `json:"ruleValue"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	EndDate       *time.Time `json:"endDate"`
	AuditFields
}
