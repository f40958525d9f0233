package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ComplianceResolverSvcFacade resolves the effective compliance rule value
// for a jurisdiction at a point in time, honoring city-over-state precedence.
// A nil result with a nil error means no rule applies; the caller decides the
// no-rule default (e.g. "no cap").
type ComplianceResolverSvcFacade interface {
	Resolve(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*string, error)
	ResolveDecimal(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*decimal.Decimal, error)
	ResolveInt(ctx context.Context, stateCode, ruleType, ruleKey string, asOf time.Time) (*int, error)
}
