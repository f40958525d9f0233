package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, subtype, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID, &m.Subtype, &m.Name, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAccountBySubtype returns the active account for a subtype.
func (r *PgxAccountRepository) FindAccountBySubtype(ctx context.Context, subtype domain.AccountSubtype) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE subtype = $1 AND is_active = TRUE`, accountColumns)
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, string(subtype)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account with subtype %s", apperrors.ErrNotFound, subtype)
		}
		return nil, apperrors.NewAppError(500, "failed to query account by subtype", err)
	}
	account := mapping.ToDomainAccount(*m)
	return &account, nil
}

// FindAccountsBySubtypes returns active accounts for the given subtypes,
// keyed by subtype. Missing subtypes are simply absent from the map.
func (r *PgxAccountRepository) FindAccountsBySubtypes(ctx context.Context, subtypes []domain.AccountSubtype) (map[domain.AccountSubtype]domain.Account, error) {
	keys := make([]string, len(subtypes))
	for i, st := range subtypes {
		keys[i] = string(st)
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE subtype = ANY($1) AND is_active = TRUE`, accountColumns)
	rows, err := r.Pool.Query(ctx, query, keys)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by subtypes", err)
	}
	defer rows.Close()

	result := make(map[domain.AccountSubtype]domain.Account, len(subtypes))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		account := mapping.ToDomainAccount(*m)
		result[account.Subtype] = account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return result, nil
}

// FindAccountsByIDs returns accounts keyed by ID. Missing IDs are absent
// from the map; existence enforcement is the caller's concern.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_id = ANY($1)`, accountColumns)
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by ids", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		account := mapping.ToDomainAccount(*m)
		result[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return result, nil
}
