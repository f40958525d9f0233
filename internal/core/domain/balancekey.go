package domain

import "github.com/shopspring/decimal"

// BalanceKey addresses one materialized balance dimension.
type BalanceKey struct {
	TenantID   string
	PropertyID string
}

// BalanceDeltas accumulates signed balance changes per dimension, typically
// derived from the tenant-dimension postings of a single journal entry.
type BalanceDeltas map[BalanceKey]decimal.Decimal

// Add accumulates a delta for the given dimension.
func (d BalanceDeltas) Add(key BalanceKey, amount decimal.Decimal) {
	if cur, ok := d[key]; ok {
		d[key] = cur.Add(amount)
		return
	}
	d[key] = amount
}

// DeltasFromPostings derives balance deltas from the tenant-dimension
// postings of an entry. Postings without a tenant do not move any
// materialized balance.
func DeltasFromPostings(postings []JournalPosting) BalanceDeltas {
	deltas := make(BalanceDeltas)
	for _, p := range postings {
		if p.TenantID == nil {
			continue
		}
		deltas.Add(BalanceKey{TenantID: *p.TenantID, PropertyID: p.PropertyID}, p.Amount)
	}
	return deltas
}
