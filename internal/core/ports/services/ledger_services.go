package services

import (
	"context"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/propfolio/property_mgmt_app/internal/dto"
)

// LedgerSvcFacade creates and reverses balanced journal entries. It is the
// single write path for money movement.
type LedgerSvcFacade interface {
	// CreateJournalEntry validates the postings balance to exactly zero and
	// persists entry, postings and balance deltas atomically.
	CreateJournalEntry(ctx context.Context, input dto.CreateEntryInput) (*domain.JournalEntry, error)

	// ReverseJournalEntry posts a new entry whose postings exactly negate the
	// original's. The original is never mutated.
	ReverseJournalEntry(ctx context.Context, entryID string, reversalDate time.Time, reason, actor string) (*domain.JournalEntry, error)

	// GetEntry returns an entry with its postings.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// AccountsBySubtype resolves required accounts from the chart of
	// accounts, failing with ErrAccountsNotFound when any is missing.
	AccountsBySubtype(ctx context.Context, subtypes ...domain.AccountSubtype) (map[domain.AccountSubtype]domain.Account, error)
}
