package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

// complianceService resolves jurisdiction rules with city-over-state
// precedence. A city-scoped code like "NC:CHARLOTTE" is queried alongside its
// parent state "NC"; when both yield an effective rule the city wins.
type complianceService struct {
	BaseService
	complianceRepo portsrepo.ComplianceRepositoryFacade
}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService(complianceRepo portsrepo.ComplianceRepositoryFacade) portssvc.ComplianceResolverSvcFacade {
	return &complianceService{complianceRepo: complianceRepo}
}

var _ portssvc.ComplianceResolverSvcFacade = (*complianceService)(nil)

// candidateCodes expands a jurisdiction code into lookup codes, most specific
// last. "NC:CHARLOTTE" yields ["NC", "NC:CHARLOTTE"]; "NC" yields ["NC"].
func candidateCodes(stateCode string) []string {
	state, cityScoped := domain.SplitStateCode(stateCode)
	if cityScoped != "" {
		return []string{state, stateCode}
	}
	return []string{stateCode}
}

// pickEffective selects the winning rule among candidates: city scope beats
// state scope, and within a scope the most recently effective rule wins.
func pickEffective(rules []domain.ComplianceRule, asOf time.Time) *domain.ComplianceRule {
	var winner *domain.ComplianceRule
	for i := range rules {
		rule := rules[i]
		if !rule.EffectiveAt(asOf) {
			continue
		}
		if winner == nil {
			winner = &rule
			continue
		}
		if rule.IsCityScoped() != winner.IsCityScoped() {
			if rule.IsCityScoped() {
				winner = &rule
			}
			continue
		}
		if rule.EffectiveDate.After(winner.EffectiveDate) {
			winner = &rule
		}
	}
	return winner
}

// Resolve returns the effective rule value, or nil when no rule applies at
// asOf for the jurisdiction.
func (s *complianceService) Resolve(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*string, error) {
	if stateCode == "" {
		return nil, fmt.Errorf("%w: state code is required", apperrors.ErrValidation)
	}

	rules, err := s.complianceRepo.FindRules(ctx, candidateCodes(stateCode), ruleType, ruleKey)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch compliance rules", slog.String("state_code", stateCode), slog.String("rule_type", ruleType), slog.String("rule_key", ruleKey))
		return nil, fmt.Errorf("%w: compliance rules for %s/%s", apperrors.ErrFetchFailed, ruleType, ruleKey)
	}

	winner := pickEffective(rules, asOf)
	if winner == nil {
		s.LogDebug(ctx, "No effective compliance rule", slog.String("state_code", stateCode), slog.String("rule_type", ruleType), slog.String("rule_key", ruleKey))
		return nil, nil
	}
	value := winner.RuleValue
	return &value, nil
}

// ResolveDecimal resolves a rule and parses its value as a decimal.
func (s *complianceService) ResolveDecimal(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*decimal.Decimal, error) {
	raw, err := s.Resolve(ctx, stateCode, ruleType, ruleKey, asOf)
	if err != nil || raw == nil {
		return nil, err
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s/%s value %q is not a decimal", apperrors.ErrValidation, ruleType, ruleKey, *raw)
	}
	return &value, nil
}

// ResolveInt resolves a rule and parses its value as an integer.
func (s *complianceService) ResolveInt(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*int, error) {
	raw, err := s.Resolve(ctx, stateCode, ruleType, ruleKey, asOf)
	if err != nil || raw == nil {
		return nil, err
	}
	value, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s/%s value %q is not an integer", apperrors.ErrValidation, ruleType, ruleKey, *raw)
	}
	return &value, nil
}
