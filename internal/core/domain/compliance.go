package domain

import (
	"strings"
	"time"
)

// Compliance rule types and keys known to the engine. The rule store carries
// arbitrary (ruleType, ruleKey) pairs; these are the ones the core consumes.
const (
	RuleTypeLateFee         = "late_fee"
	RuleTypeSecurityDeposit = "security_deposit"

	RuleKeyGracePeriodDays = "grace_period_days"
	RuleKeyMaxPercent      = "max_percent"
	RuleKeyMaxFlat         = "max_flat"
	RuleKeyReturnDeadline  = "return_deadline_days"
	RuleKeyInterestRate    = "interest_rate"
	RuleKeyDepositMax      = "deposit_max_months"
)

// ComplianceRule is one versioned compliance fact. StateCode is either a bare
// state code ("NC") or a city override ("NC:CHARLOTTE"); city rows shadow
// state rows for the same (ruleType, ruleKey).
type ComplianceRule struct {
	RuleID        string     `json:"ruleID"` // Primary Key (UUID)
	StateCode     string     `json:"stateCode"`
	RuleType      string     `json:"ruleType"`
	RuleKey       string     `json:"ruleKey"`
	RuleValue     string     `json:"ruleValue"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	AuditFields
}

// EffectiveAt reports whether the rule applies at the given instant:
// effectiveDate <= asOf <= (endDate ?? infinity).
func (r ComplianceRule) EffectiveAt(asOf time.Time) bool {
	if asOf.Before(r.EffectiveDate) {
		return false
	}
	if r.EndDate != nil && asOf.After(*r.EndDate) {
		return false
	}
	return true
}

// IsCityScoped reports whether the rule carries a STATE:CITY override scope.
func (r ComplianceRule) IsCityScoped() bool {
	return strings.Contains(r.StateCode, ":")
}

// SplitStateCode splits a jurisdiction code into its state part and, when
// present, its city-qualified form. For "NC:CHARLOTTE" it returns
// ("NC", "NC:CHARLOTTE"); for "NC" it returns ("NC", "").
func SplitStateCode(stateCode string) (state string, cityScoped string) {
	if i := strings.Index(stateCode, ":"); i >= 0 {
		return stateCode[:i], stateCode
	}
	return stateCode, ""
}
