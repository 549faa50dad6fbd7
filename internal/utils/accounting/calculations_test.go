package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/agridane/erp_backend/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, IsBalanced(dec("100.00"), dec("100.00")))
	assert.True(t, IsBalanced(decimal.Zero, decimal.Zero), "empty transaction is trivially balanced")
	assert.True(t, IsBalanced(dec("100.004"), dec("100.00")), "drift below epsilon is tolerated")
	assert.False(t, IsBalanced(dec("100.005"), dec("100.00")), "epsilon itself is out of balance")
	assert.False(t, IsBalanced(dec("100.01"), dec("100.00")))
	assert.False(t, IsBalanced(dec("99.99"), dec("100.00")))
}

func TestSumDetails(t *testing.T) {
	details := []domain.TransactionDetail{
		{Debit: dec("10.101"), Credit: decimal.Zero},
		{Debit: dec("5.404"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: dec("15.50")},
	}
	debit, credit := SumDetails(details)
	assert.True(t, dec("15.51").Equal(debit), "debit sum rounds to 2dp, got %s", debit)
	assert.True(t, dec("15.50").Equal(credit))
}

func TestValidateDetailAmounts(t *testing.T) {
	assert.NoError(t, ValidateDetailAmounts(dec("10"), decimal.Zero))
	assert.NoError(t, ValidateDetailAmounts(decimal.Zero, dec("10")))
	assert.Error(t, ValidateDetailAmounts(dec("10"), dec("10")), "both sides set")
	assert.Error(t, ValidateDetailAmounts(decimal.Zero, decimal.Zero), "neither side set")
	assert.Error(t, ValidateDetailAmounts(dec("-5"), decimal.Zero))
	assert.Error(t, ValidateDetailAmounts(dec("-5"), dec("10")))
}

func TestBankRowAmounts(t *testing.T) {
	// Disbursement credits the bank with the excess debit.
	debit, credit, err := BankRowAmounts(domain.CashDisbursement, dec("150"), dec("20"))
	assert.NoError(t, err)
	assert.True(t, debit.IsZero())
	assert.True(t, dec("130").Equal(credit))

	// Receipt debits the bank with the excess credit.
	debit, credit, err = BankRowAmounts(domain.CashReceipt, dec("10"), dec("75"))
	assert.NoError(t, err)
	assert.True(t, dec("65").Equal(debit))
	assert.True(t, credit.IsZero())

	// Floored at zero when the offset would go negative.
	debit, credit, err = BankRowAmounts(domain.CashDisbursement, dec("10"), dec("50"))
	assert.NoError(t, err)
	assert.True(t, debit.IsZero())
	assert.True(t, credit.IsZero())

	_, _, err = BankRowAmounts(domain.GeneralAccounting, dec("10"), dec("10"))
	assert.Error(t, err, "GA has no bank row")
}

func TestLegacyAmount(t *testing.T) {
	debit, credit := dec("80"), dec("120")

	crPolicy := domain.PolicyFor(domain.CashReceipt)
	assert.True(t, credit.Equal(LegacyAmount(crPolicy, debit, credit)), "receipt modules mirror credit")

	cdPolicy := domain.PolicyFor(domain.CashDisbursement)
	assert.True(t, debit.Equal(LegacyAmount(cdPolicy, debit, credit)), "disbursement mirrors debit")
}
