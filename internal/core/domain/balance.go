package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DimensionalBalance is the materialized per-(tenant, property) balance.
// It is recomputed transactionally with every posting that touches the
// dimension and never drifts from sum(postings) for that dimension.
type DimensionalBalance struct {
	TenantID      string          `json:"tenantID"`
	PropertyID    string          `json:"propertyID"`
	Balance       decimal.Decimal `json:"balance"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}
