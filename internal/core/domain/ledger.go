package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ModuleType identifies a journal-entry module. Each module persists its own
// header table but shares the detail table and the balancing rules.
type ModuleType string

const (
	CashReceipt       ModuleType = "CR"
	CashDisbursement  ModuleType = "CD"
	CashSales         ModuleType = "CS"
	CashPurchase      ModuleType = "CP"
	GeneralAccounting ModuleType = "GA"
)

// ParseModuleType validates a module identifier coming from the API.
func ParseModuleType(s string) (ModuleType, error) {
	switch ModuleType(s) {
	case CashReceipt, CashDisbursement, CashSales, CashPurchase, GeneralAccounting:
		return ModuleType(s), nil
	}
	return "", fmt.Errorf("unknown module type %q", s)
}

// BankRowTag marks the system-maintained bank offset detail row in the
// workstation_id column of cash receipt and disbursement details.
const BankRowTag = "BANK"

// ModulePolicy captures the per-module behavioral differences that the
// legacy system hard-coded in each controller.
type ModulePolicy struct {
	// AllowDuplicateAccounts permits the same acct_code on multiple detail
	// rows of one transaction. Only general accounting allows this.
	AllowDuplicateAccounts bool
	// HasBankRow enables the auto-balanced bank offset row.
	HasBankRow bool
	// AmountMirrorsCredit selects which side the legacy header amount field
	// mirrors. Receipt-type modules mirror total credit, the rest mirror
	// total debit (normal-balance convention).
	AmountMirrorsCredit bool
}

// PolicyFor returns the balancing policy for a module.
func PolicyFor(module ModuleType) ModulePolicy {
	switch module {
	case CashReceipt:
		return ModulePolicy{HasBankRow: true, AmountMirrorsCredit: true}
	case CashDisbursement:
		return ModulePolicy{HasBankRow: true}
	case CashSales:
		return ModulePolicy{AmountMirrorsCredit: true}
	case CashPurchase:
		return ModulePolicy{}
	case GeneralAccounting:
		return ModulePolicy{AllowDuplicateAccounts: true}
	}
	return ModulePolicy{}
}

// TransactionHeader is the summary row of a journal transaction. The cached
// totals are derived by the balance engine and are never hand-edited.
type TransactionHeader struct {
	TransactionID  string          `json:"transactionID"`
	Module         ModuleType      `json:"module"`
	DocNo          int64           `json:"docNo"` // sequential per company (cr_no/cd_no/...)
	Date           time.Time       `json:"date"`
	CounterpartyID *string         `json:"counterpartyID,omitempty"` // customer or vendor, module dependent
	BankID         *string         `json:"bankID,omitempty"`         // selected bank for cash modules
	Explanation    string          `json:"explanation"`
	CompanyID      string          `json:"companyID"`
	Cancel         CancelState     `json:"cancel"`
	SumDebit       decimal.Decimal `json:"sumDebit"`
	SumCredit      decimal.Decimal `json:"sumCredit"`
	IsBalanced     bool            `json:"isBalanced"`
	Amount         decimal.Decimal `json:"amount"` // legacy mirror of one side, see ModulePolicy
	AuditFields
}

// TransactionDetail is a single GL posting line owned by a header. Exactly
// one of Debit/Credit is positive, the other is zero.
type TransactionDetail struct {
	DetailID      string          `json:"detailID"`
	Module        ModuleType      `json:"module"`
	TransactionID string          `json:"transactionID"`
	AcctCode      string          `json:"acctCode"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	WorkstationID string          `json:"workstationID,omitempty"`
	AuditFields
}

// IsBankRow reports whether this detail is the system-maintained bank offset row.
func (d TransactionDetail) IsBankRow() bool {
	return d.WorkstationID == BankRowTag
}
