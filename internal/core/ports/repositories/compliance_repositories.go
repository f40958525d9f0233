package repositories

import (
	"context"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
)

// ComplianceRepositoryFacade reads the externally-administered rule store.
// The engine consumes rules; it never writes them.
type ComplianceRepositoryFacade interface {
	// FindRules returns all rule rows matching any of the given jurisdiction
	// codes for a (ruleType, ruleKey) pair, regardless of effective window.
	// Temporal filtering and precedence are the resolver's concern.
	FindRules(ctx context.Context, stateCodes []string, ruleType, ruleKey string) ([]domain.ComplianceRule, error)
}
