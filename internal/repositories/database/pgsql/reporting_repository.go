package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
	"github.com/propfolio/property_mgmt_app/internal/utils/pagination"
)

// defaultLedgerPageSize caps unbounded ledger reads.
const defaultLedgerPageSize = 50

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new read-side repository over the
// journal.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepositoryFacade = (*PgxReportingRepository)(nil)

const ledgerLineColumns = `p.posting_id, p.entry_id, p.account_id, p.amount, p.property_id, p.tenant_id, p.description,
	p.created_at, p.created_by, p.last_updated_at, p.last_updated_by,
	e.entry_date, e.entry_type, e.description`

func scanLedgerLine(rows pgx.Rows) (domain.LedgerLine, error) {
	var m models.JournalPosting
	var line domain.LedgerLine
	var entryType string
	err := rows.Scan(
		&m.PostingID, &m.EntryID, &m.AccountID, &m.Amount, &m.PropertyID,
		&m.TenantID, &m.Description,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		&line.EntryDate, &entryType, &line.Description,
	)
	if err != nil {
		return domain.LedgerLine{}, err
	}
	line.Posting = mapping.ToDomainJournalPosting(m)
	line.EntryType = domain.EntryType(entryType)
	return line, nil
}

// FindTenantPostings returns tenant-dimension postings newest-first with
// keyset pagination on (entry_date, created_at). One extra row is fetched to
// decide whether a next page exists.
func (r *PgxReportingRepository) FindTenantPostings(ctx context.Context, tenantID string, filters portsrepo.LedgerQueryFilters) ([]domain.LedgerLine, *string, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM journal_postings p
		JOIN journal_entries e ON e.entry_id = p.entry_id
		WHERE p.tenant_id = $1`, ledgerLineColumns)
	args := []any{tenantID}

	if filters.PropertyID != "" {
		args = append(args, filters.PropertyID)
		query += fmt.Sprintf(` AND p.property_id = $%d`, len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		query += fmt.Sprintf(` AND e.entry_date >= $%d`, len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		query += fmt.Sprintf(` AND e.entry_date <= $%d`, len(args))
	}
	if filters.NextToken != nil {
		entryDate, createdAt, err := pagination.DecodeToken(*filters.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, entryDate, createdAt)
		query += fmt.Sprintf(` AND (e.entry_date, p.created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY e.entry_date DESC, p.created_at DESC LIMIT $%d`, len(args))

	lines, err := r.queryLines(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[len(lines)-1]
		token := pagination.EncodeToken(last.EntryDate, last.Posting.CreatedAt)
		nextToken = &token
	}
	return lines, nextToken, nil
}

// FindTenantPostingsInWindow returns all postings for a dimension within
// (start, end], newest-first.
func (r *PgxReportingRepository) FindTenantPostingsInWindow(ctx context.Context, tenantID, propertyID string, start, end time.Time) ([]domain.LedgerLine, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM journal_postings p
		JOIN journal_entries e ON e.entry_id = p.entry_id
		WHERE p.tenant_id = $1 AND p.property_id = $2 AND e.entry_date > $3 AND e.entry_date <= $4
		ORDER BY e.entry_date DESC, p.created_at DESC`, ledgerLineColumns)
	return r.queryLines(ctx, query, tenantID, propertyID, start, end)
}

func (r *PgxReportingRepository) queryLines(ctx context.Context, query string, args ...any) ([]domain.LedgerLine, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger lines", err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		line, err := scanLedgerLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger lines", err)
	}
	return lines, nil
}

// SumPostingsNewerThan sums postings strictly newer than a keyset position,
// so a page's running balances can be folded from the current balance.
func (r *PgxReportingRepository) SumPostingsNewerThan(ctx context.Context, tenantID, propertyID string, entryDate, createdAt time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(p.amount), 0)
		FROM journal_postings p
		JOIN journal_entries e ON e.entry_id = p.entry_id
		WHERE p.tenant_id = $1 AND (e.entry_date, p.created_at) > ($2, $3)`
	args := []any{tenantID, entryDate, createdAt}
	if propertyID != "" {
		query += ` AND p.property_id = $4`
		args = append(args, propertyID)
	}

	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum postings newer than position", err)
	}
	return sum, nil
}
