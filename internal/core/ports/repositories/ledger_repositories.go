package repositories

import (
	"context"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// AccountRepositoryFacade provides chart-of-accounts lookups. Accounts are
// addressed by subtype; IDs are an implementation detail of the store.
type AccountRepositoryFacade interface {
	FindAccountBySubtype(ctx context.Context, subtype domain.AccountSubtype) (*domain.Account, error)
	FindAccountsBySubtypes(ctx context.Context, subtypes []domain.AccountSubtype) (map[domain.AccountSubtype]domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// LedgerRepositoryFacade persists journal entries. Both save operations write
// the entry, its postings and the dimensional balance upserts in one database
// transaction, so no reader ever observes a partially-posted entry.
type LedgerRepositoryFacade interface {
	// SaveEntry persists a balanced entry with its postings and applies the
	// given balance deltas atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, deltas domain.BalanceDeltas) error

	// SaveReversalEntry persists the reversing entry and links the original
	// to it (reversed_by_entry_id) in the same transaction. The original's
	// postings are never touched.
	SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, deltas domain.BalanceDeltas, originalEntryID string, actor string, at time.Time) error

	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	FindPostingsByEntryID(ctx context.Context, entryID string) ([]domain.JournalPosting, error)
}
