package accounting

import (
	"fmt"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the fixed tolerance for the balanced check. It absorbs
// floating-point drift from legacy data; it is deliberately not configurable
// because every component comparing debit to credit must agree on it.
var BalanceEpsilon = decimal.RequireFromString("0.005")

// Round2 rounds a currency amount to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SumDetails sums the debit and credit columns of a transaction's detail
// rows, rounded to 2 decimal places.
func SumDetails(details []domain.TransactionDetail) (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, d := range details {
		debit = debit.Add(d.Debit)
		credit = credit.Add(d.Credit)
	}
	return Round2(debit), Round2(credit)
}

// IsBalanced reports whether debit equals credit within BalanceEpsilon.
// An empty transaction (0 = 0) is trivially balanced.
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThan(BalanceEpsilon)
}

// ValidateDetailAmounts enforces the debit-XOR-credit contract: exactly one
// of the two must be positive and the other zero.
func ValidateDetailAmounts(debit, credit decimal.Decimal) error {
	debitSet := debit.IsPositive()
	creditSet := credit.IsPositive()
	if debitSet && creditSet {
		return fmt.Errorf("exactly one of debit/credit must be positive, got debit=%s credit=%s", debit, credit)
	}
	if !debitSet && !creditSet {
		return fmt.Errorf("exactly one of debit/credit must be positive, got debit=%s credit=%s", debit, credit)
	}
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("debit and credit must not be negative, got debit=%s credit=%s", debit, credit)
	}
	return nil
}

// BankRowAmounts computes the forced-balance debit/credit of the bank offset
// row from the non-bank sums. Disbursements credit the bank, receipts debit
// it. The amount is floored at zero: an overdrawn posting stays visible as an
// unbalanced transaction instead of a negative bank line.
func BankRowAmounts(module domain.ModuleType, debitExcl, creditExcl decimal.Decimal) (debit, credit decimal.Decimal, err error) {
	switch module {
	case domain.CashDisbursement:
		credit = Round2(decimal.Max(decimal.Zero, debitExcl.Sub(creditExcl)))
		return decimal.Zero, credit, nil
	case domain.CashReceipt:
		debit = Round2(decimal.Max(decimal.Zero, creditExcl.Sub(debitExcl)))
		return debit, decimal.Zero, nil
	}
	return decimal.Zero, decimal.Zero, fmt.Errorf("module %s does not maintain a bank row", module)
}

// LegacyAmount returns the value of the legacy header amount field: receipt
// type modules mirror total credit, the rest mirror total debit.
func LegacyAmount(policy domain.ModulePolicy, debit, credit decimal.Decimal) decimal.Decimal {
	if policy.AmountMirrorsCredit {
		return credit
	}
	return debit
}
