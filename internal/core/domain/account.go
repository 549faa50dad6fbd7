package domain

// AccountCategory buckets an account for financial-statement reporting.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Account represents a GL account code. BankID links the account that
// represents a bank's cash balance; the balance engine resolves the bank
// offset row through it.
type Account struct {
	AccountID   string          `json:"accountID"`
	CompanyID   string          `json:"companyID"`
	Code        string          `json:"code"` // unique per company
	Description string          `json:"description"`
	Category    AccountCategory `json:"category"`
	IsActive    bool            `json:"isActive"`
	BankID      *string         `json:"bankID,omitempty"`
	AuditFields
}
