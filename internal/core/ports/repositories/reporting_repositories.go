package repositories

import (
	"context"
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
)

// LedgerQuery is the filter set a report builder passes to the ledger reads.
// CompanyID is mandatory; everything else narrows the result.
type LedgerQuery struct {
	CompanyID string
	StartDate time.Time
	EndDate   time.Time
	Modules   []domain.ModuleType // empty = all modules
	AcctFrom  string              // inclusive account-code range, empty = open
	AcctTo    string
	Query     string // free-text filter on explanation / counterparty
}

// ReportingRepository is the read-only query surface the report builders
// aggregate from. Implementations must scope every join by company.
type ReportingRepository interface {
	// GetLedgerLines returns detail rows joined to header, account and
	// counterparty, ordered by account code then date then document number.
	GetLedgerLines(ctx context.Context, q LedgerQuery) ([]domain.LedgerLine, error)
	// GetTrialBalanceRows aggregates debit/credit per account over the range.
	GetTrialBalanceRows(ctx context.Context, q LedgerQuery) ([]domain.TrialBalanceRow, error)
}
