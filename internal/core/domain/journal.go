package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a journal entry by the business event that produced it.
type EntryType string

const (
	EntryPayment  EntryType = "payment"
	EntryCharge   EntryType = "charge"
	EntryLateFee  EntryType = "late_fee"
	EntryReversal EntryType = "reversal"
)

// JournalEntry is a balanced, immutable financial record. An entry is never
// mutated or deleted after creation; corrections happen through a new
// reversing entry linked back to the original.
type JournalEntry struct {
	EntryID     string            `json:"entryID"` // Primary Key (UUID)
	EntryDate   time.Time         `json:"entryDate"`
	EntryType   EntryType         `json:"entryType"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	// Reversal links. OriginalEntryID is set on the reversing entry,
	// ReversedByEntryID on the entry that was reversed.
	OriginalEntryID   *string `json:"originalEntryID,omitempty"`
	ReversedByEntryID *string `json:"reversedByEntryID,omitempty"`

	Postings []JournalPosting `json:"postings,omitempty"`
	AuditFields
}

// JournalPosting is a single signed movement within a journal entry.
// Positive amounts are debits, negative amounts are credits; the postings of
// one entry always sum to exactly zero.
type JournalPosting struct {
	PostingID   string          `json:"postingID"` // Primary Key (UUID)
	EntryID     string          `json:"entryID"`   // FK -> JournalEntry
	AccountID   string          `json:"accountID"` // FK -> Account
	Amount      decimal.Decimal `json:"amount"`
	PropertyID  string          `json:"propertyID"`
	TenantID    *string         `json:"tenantID,omitempty"` // Set on tenant-dimension postings
	Description string          `json:"description"`
	AuditFields
}
