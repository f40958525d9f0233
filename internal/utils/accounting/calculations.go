package accounting

import (
	"fmt"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of decimal places carried by serialized and
// persisted currency amounts.
const CurrencyScale = 2

// hundred is the divisor for percentage rule values.
var hundred = decimal.NewFromInt(100)

// RoundCurrency rounds to currency precision with banker's (half-even)
// rounding. Applied only at serialization and persistence boundaries, never
// mid-computation, so chained additions do not compound rounding error.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CurrencyScale)
}

// SumPostings returns the exact sum of posting amounts.
func SumPostings(postings []domain.JournalPosting) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range postings {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ValidateBalanced rejects postings that do not sum to exactly zero. The
// comparison is exact decimal equality; there is no epsilon.
func ValidateBalanced(postings []domain.JournalPosting) error {
	if len(postings) < 2 {
		return fmt.Errorf("%w: entry must have at least two postings", apperrors.ErrValidation)
	}
	if sum := SumPostings(postings); !sum.IsZero() {
		return fmt.Errorf("%w: postings sum to %s", apperrors.ErrUnbalancedEntry, sum.String())
	}
	return nil
}

// AllocationPlan is one planned application of payment money to a charge.
type AllocationPlan struct {
	ChargeID string
	Amount   decimal.Decimal
}

// AllocateFIFO applies a payment amount to charges in the order given
// (callers pass charges oldest-first). Each charge absorbs
// min(remaining, balanceDue); the unapplied remainder is returned.
func AllocateFIFO(charges []domain.TenantCharge, amount decimal.Decimal) ([]AllocationPlan, decimal.Decimal) {
	remaining := amount
	plans := make([]AllocationPlan, 0, len(charges))
	for _, charge := range charges {
		if remaining.IsZero() {
			break
		}
		if charge.BalanceDue.LessThanOrEqual(decimal.Zero) {
			continue
		}
		applied := decimal.Min(remaining, charge.BalanceDue)
		plans = append(plans, AllocationPlan{ChargeID: charge.ChargeID, Amount: applied})
		remaining = remaining.Sub(applied)
	}
	return plans, remaining
}

// LateFee computes a single charge's late fee from the original charge
// amount (never from a balance that may include earlier fees) capped by the
// flat maximum when one applies. A nil cap means no cap.
func LateFee(originalAmount, percent decimal.Decimal, cap *decimal.Decimal) decimal.Decimal {
	fee := originalAmount.Mul(percent).Div(hundred)
	if cap != nil && fee.GreaterThan(*cap) {
		fee = *cap
	}
	return RoundCurrency(fee)
}

// SplitInstallments divides a total into n currency-rounded installments.
// Every installment is total/n rounded half-even except the last, which
// absorbs the residual so the schedule sums to the total exactly.
func SplitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	base := RoundCurrency(total.Div(decimal.NewFromInt(int64(n))))
	amounts := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		amounts[i] = base
		allocated = allocated.Add(base)
	}
	amounts[n-1] = total.Sub(allocated)
	return amounts
}

// DaysBetween returns whole days from a to b, truncating both to UTC dates
// so partial days never shift a boundary.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
