package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for journal entries and
// their postings.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const journalEntryColumns = `entry_id, entry_date, entry_type, description, metadata, original_entry_id, reversed_by_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const journalPostingColumns = `posting_id, entry_id, account_id, amount, property_id, tenant_id, description, created_at, created_by, last_updated_at, last_updated_by`

// SaveEntry persists the entry, its postings and the balance upserts in one
// transaction.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, deltas domain.BalanceDeltas) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertEntryInTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := r.applyDeltasInTx(ctx, tx, deltas, entry.LastUpdatedAt); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveReversalEntry persists the reversing entry and marks the original as
// reversed in the same transaction. The original's postings are untouched; a
// concurrent reversal of the same entry loses on the reversed_by_entry_id
// guard and gets ErrConflict.
func (r *PgxLedgerRepository) SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, deltas domain.BalanceDeltas, originalEntryID string, actor string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertEntryInTx(ctx, tx, reversal); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE journal_entries
		 SET reversed_by_entry_id = $1, last_updated_at = $2, last_updated_by = $3
		 WHERE entry_id = $4 AND reversed_by_entry_id IS NULL`,
		reversal.EntryID, at, actor, originalEntryID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark entry as reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is already reversed", apperrors.ErrConflict, originalEntryID)
	}
	if err := r.applyDeltasInTx(ctx, tx, deltas, at); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := fmt.Sprintf(`INSERT INTO journal_entries (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, journalEntryColumns)
	_, err := tx.Exec(ctx, query,
		m.EntryID, m.EntryDate, m.EntryType, m.Description, m.Metadata,
		m.OriginalEntryID, m.ReversedByEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry", err)
	}

	batch := &pgx.Batch{}
	postingQuery := fmt.Sprintf(`INSERT INTO journal_postings (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, journalPostingColumns)
	for _, posting := range entry.Postings {
		pm := mapping.ToModelJournalPosting(posting)
		batch.Queue(postingQuery,
			pm.PostingID, pm.EntryID, pm.AccountID, pm.Amount, pm.PropertyID,
			pm.TenantID, pm.Description,
			pm.CreatedAt, pm.CreatedBy, pm.LastUpdatedAt, pm.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entry.Postings {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert journal posting", err)
		}
	}
	return results.Close()
}

// applyDeltasInTx upserts the materialized balances. Keys are applied in a
// fixed order so concurrent entries touching the same dimensions cannot
// deadlock each other.
func (r *PgxLedgerRepository) applyDeltasInTx(ctx context.Context, tx pgx.Tx, deltas domain.BalanceDeltas, at time.Time) error {
	keys := make([]domain.BalanceKey, 0, len(deltas))
	for key := range deltas {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TenantID != keys[j].TenantID {
			return keys[i].TenantID < keys[j].TenantID
		}
		return keys[i].PropertyID < keys[j].PropertyID
	})

	for _, key := range keys {
		_, err := tx.Exec(ctx,
			`INSERT INTO dimensional_balances (tenant_id, property_id, balance, last_updated_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (tenant_id, property_id)
			 DO UPDATE SET balance = dimensional_balances.balance + EXCLUDED.balance,
			               last_updated_at = EXCLUDED.last_updated_at`,
			key.TenantID, key.PropertyID, deltas[key], at,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to upsert dimensional balance", err)
		}
	}
	return nil
}

// FindEntryByID returns the entry without its postings; callers load postings
// separately when they need them.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE entry_id = $1`, journalEntryColumns)

	var m models.JournalEntry
	err := r.Pool.QueryRow(ctx, query, entryID).Scan(
		&m.EntryID, &m.EntryDate, &m.EntryType, &m.Description, &m.Metadata,
		&m.OriginalEntryID, &m.ReversedByEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, apperrors.NewAppError(500, "failed to query journal entry", err)
	}
	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// FindPostingsByEntryID returns the entry's postings in insertion order.
func (r *PgxLedgerRepository) FindPostingsByEntryID(ctx context.Context, entryID string) ([]domain.JournalPosting, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_postings WHERE entry_id = $1 ORDER BY created_at ASC, posting_id ASC`, journalPostingColumns)

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal postings", err)
	}
	defer rows.Close()

	var ms []models.JournalPosting
	for rows.Next() {
		var m models.JournalPosting
		err := rows.Scan(
			&m.PostingID, &m.EntryID, &m.AccountID, &m.Amount, &m.PropertyID,
			&m.TenantID, &m.Description,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating posting rows", err)
	}
	return mapping.ToDomainJournalPostingSlice(ms), nil
}
