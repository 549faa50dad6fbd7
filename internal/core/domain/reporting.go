package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is one detail row joined to its header and account, the raw
// material every report builder aggregates from. All joins are company
// scoped in the repository.
type LedgerLine struct {
	Module           ModuleType
	TransactionID    string
	DocNo            int64
	Date             time.Time
	AcctCode         string
	AcctDescription  string
	Category         AccountCategory
	CounterpartyName string
	Explanation      string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
	// BankRow marks the system-maintained bank offset line of the cash
	// modules so listings can fold it into its transaction.
	BankRow bool
}

// TrialBalanceRow aggregates debit/credit totals per account, bucketed by
// financial-statement category.
type TrialBalanceRow struct {
	AcctCode        string
	AcctDescription string
	Category        AccountCategory
	Debit           decimal.Decimal
	Credit          decimal.Decimal
}
