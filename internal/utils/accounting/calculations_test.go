package accounting

import (
	"testing"
	"time"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateBalanced(t *testing.T) {
	balanced := []domain.JournalPosting{
		{Amount: dec("1200.00")},
		{Amount: dec("-1200.00")},
	}
	assert.NoError(t, ValidateBalanced(balanced))

	unbalanced := []domain.JournalPosting{
		{Amount: dec("1200.00")},
		{Amount: dec("-1199.99")},
	}
	err := ValidateBalanced(unbalanced)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)

	// A single posting can never balance.
	err = ValidateBalanced([]domain.JournalPosting{{Amount: decimal.Zero}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAllocateFIFO(t *testing.T) {
	charges := []domain.TenantCharge{
		{ChargeID: "c1", BalanceDue: dec("500.00")},
		{ChargeID: "c2", BalanceDue: dec("15.00")},
	}

	plans, remaining := AllocateFIFO(charges, dec("600.00"))
	require.Len(t, plans, 2)
	assert.Equal(t, "c1", plans[0].ChargeID)
	assert.True(t, plans[0].Amount.Equal(dec("500.00")))
	assert.Equal(t, "c2", plans[1].ChargeID)
	assert.True(t, plans[1].Amount.Equal(dec("15.00")))
	assert.True(t, remaining.Equal(dec("85.00")), "remainder should be 85.00, got %s", remaining)
}

func TestAllocateFIFOPartial(t *testing.T) {
	charges := []domain.TenantCharge{
		{ChargeID: "c1", BalanceDue: dec("500.00")},
		{ChargeID: "c2", BalanceDue: dec("300.00")},
	}

	plans, remaining := AllocateFIFO(charges, dec("600.00"))
	require.Len(t, plans, 2)
	assert.True(t, plans[0].Amount.Equal(dec("500.00")))
	assert.True(t, plans[1].Amount.Equal(dec("100.00")), "second charge gets what is left")
	assert.True(t, remaining.IsZero())
}

func TestAllocateFIFOSkipsSettledCharges(t *testing.T) {
	charges := []domain.TenantCharge{
		{ChargeID: "c1", BalanceDue: decimal.Zero},
		{ChargeID: "c2", BalanceDue: dec("40.00")},
	}

	plans, remaining := AllocateFIFO(charges, dec("25.00"))
	require.Len(t, plans, 1)
	assert.Equal(t, "c2", plans[0].ChargeID)
	assert.True(t, remaining.IsZero())
}

func TestLateFeeCap(t *testing.T) {
	// NC rule set: rent 1000, max_percent=5, max_flat=15 => fee is 15, not 50.
	cap := dec("15.00")
	fee := LateFee(dec("1000.00"), dec("5"), &cap)
	assert.True(t, fee.Equal(dec("15.00")), "expected 15.00, got %s", fee)

	// Without a cap the percentage applies untouched.
	fee = LateFee(dec("1000.00"), dec("5"), nil)
	assert.True(t, fee.Equal(dec("50.00")))

	// Cap larger than the percentage fee does not bind.
	cap = dec("100.00")
	fee = LateFee(dec("1000.00"), dec("5"), &cap)
	assert.True(t, fee.Equal(dec("50.00")))
}

func TestSplitInstallmentsSumsExactly(t *testing.T) {
	cases := []struct {
		total string
		n     int
	}{
		{"1000.00", 3},
		{"100.00", 7},
		{"0.05", 2},
		{"2500.00", 12},
	}

	for _, tc := range cases {
		amounts := SplitInstallments(dec(tc.total), tc.n)
		require.Len(t, amounts, tc.n)
		sum := decimal.Zero
		for _, a := range amounts {
			sum = sum.Add(a)
		}
		assert.True(t, sum.Equal(dec(tc.total)), "total %s over %d: sum %s", tc.total, tc.n, sum)

		// All but the last installment are identical.
		for i := 0; i < tc.n-1; i++ {
			assert.True(t, amounts[i].Equal(amounts[0]))
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 1, 31, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestRoundCurrencyHalfEven(t *testing.T) {
	assert.True(t, RoundCurrency(dec("1.005")).Equal(dec("1.00")))
	assert.True(t, RoundCurrency(dec("1.015")).Equal(dec("1.02")))
	assert.True(t, RoundCurrency(dec("1.014")).Equal(dec("1.01")))
}
