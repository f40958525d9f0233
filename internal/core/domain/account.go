package domain

// AccountSubtype identifies an account's role in the chart of accounts.
// Core code always looks accounts up by subtype, never by hard-coded ID.
type AccountSubtype string

const (
	AccountTrustBank          AccountSubtype = "trust_bank"
	AccountAccountsReceivable AccountSubtype = "accounts_receivable"
	AccountRentalIncome       AccountSubtype = "rental_income"
	AccountLateFeeIncome      AccountSubtype = "late_fee_income"
	AccountSecurityDeposits   AccountSubtype = "security_deposits"
	AccountTenantCredits      AccountSubtype = "tenant_credits"
)

// Account represents a ledger account within the chart of accounts.
type Account struct {
	AccountID string         `json:"accountID"` // Primary Key (UUID)
	Subtype   AccountSubtype `json:"subtype"`
	Name      string         `json:"name"`
	IsActive  bool           `json:"isActive"`
	AuditFields
}
