package dto

import (
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingInput is one signed posting line in a journal entry request.
// Positive amounts debit the account, negative amounts credit it.
type PostingInput struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PropertyID  string          `json:"propertyID" binding:"required"`
	TenantID    *string         `json:"tenantID,omitempty"`
	Description string          `json:"description,omitempty"`
}

// CreateEntryInput carries everything needed to post a balanced journal entry.
type CreateEntryInput struct {
	EntryDate   time.Time         `json:"entryDate" binding:"required"`
	EntryType   domain.EntryType  `json:"entryType" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Postings    []PostingInput    `json:"postings" binding:"required,min=2"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Actor       string            `json:"-"`
}

// PostingResponse is one posting as returned by the query API.
type PostingResponse struct {
	PostingID   string          `json:"postingID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	PropertyID  string          `json:"propertyID"`
	TenantID    *string         `json:"tenantID,omitempty"`
	Description string          `json:"description,omitempty"`
}

// EntryResponse is a journal entry with its postings.
type EntryResponse struct {
	EntryID           string            `json:"entryID"`
	EntryDate         time.Time         `json:"entryDate"`
	EntryType         string            `json:"entryType"`
	Description       string            `json:"description"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	OriginalEntryID   *string           `json:"originalEntryID,omitempty"`
	ReversedByEntryID *string           `json:"reversedByEntryID,omitempty"`
	Postings          []PostingResponse `json:"postings"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// ReverseEntryRequest asks for a correcting reversal of a posted entry.
type ReverseEntryRequest struct {
	ReversalDate time.Time `json:"reversalDate" binding:"required"`
	Reason       string    `json:"reason" binding:"required"`
}

// ToPostingResponse converts a domain posting to its response form.
func ToPostingResponse(p *domain.JournalPosting) PostingResponse {
	return PostingResponse{
		PostingID:   p.PostingID,
		AccountID:   p.AccountID,
		Amount:      p.Amount,
		PropertyID:  p.PropertyID,
		TenantID:    p.TenantID,
		Description: p.Description,
	}
}

// ToEntryResponse converts a domain entry (with postings) to its response form.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	postings := make([]PostingResponse, len(e.Postings))
	for i := range e.Postings {
		postings[i] = ToPostingResponse(&e.Postings[i])
	}
	return EntryResponse{
		EntryID:           e.EntryID,
		EntryDate:         e.EntryDate,
		EntryType:         string(e.EntryType),
		Description:       e.Description,
		Metadata:          e.Metadata,
		OriginalEntryID:   e.OriginalEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		Postings:          postings,
		CreatedAt:         e.CreatedAt,
	}
}
