package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	"github.com/propfolio/property_mgmt_app/internal/models"
	"github.com/propfolio/property_mgmt_app/internal/utils/mapping"
)

type PgxComplianceRepository struct {
	BaseRepository
}

// newPgxComplianceRepository creates a new read-only repository for the
// compliance rule store.
func newPgxComplianceRepository(pool *pgxpool.Pool) portsrepo.ComplianceRepositoryFacade {
	return &PgxComplianceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ComplianceRepositoryFacade = (*PgxComplianceRepository)(nil)

// FindRules returns all rule rows for the given jurisdiction codes and
// (ruleType, ruleKey) pair. The resolver applies temporal filtering and
// precedence on top.
func (r *PgxComplianceRepository) FindRules(ctx context.Context, stateCodes []string, ruleType, ruleKey string) ([]domain.ComplianceRule, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT rule_id, state_code, rule_type, rule_key, rule_value, effective_date, end_date,
		        created_at, created_by, last_updated_at, last_updated_by
		 FROM compliance_rules
		 WHERE state_code = ANY($1) AND rule_type = $2 AND rule_key = $3`,
		stateCodes, ruleType, ruleKey,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query compliance rules", err)
	}
	defer rows.Close()

	var rules []domain.ComplianceRule
	for rows.Next() {
		var m models.ComplianceRule
		err := rows.Scan(
			&m.RuleID, &m.StateCode, &m.RuleType, &m.RuleKey, &m.RuleValue,
			&m.EffectiveDate, &m.EndDate,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan compliance rule row", err)
		}
		rules = append(rules, mapping.ToDomainComplianceRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating compliance rule rows", err)
	}
	return rules, nil
}
