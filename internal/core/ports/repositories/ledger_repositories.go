package repositories

import (
	"context"
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HeaderTotals is the derived balance state the engine persists onto a
// transaction header after every detail mutation.
type HeaderTotals struct {
	SumDebit   decimal.Decimal
	SumCredit  decimal.Decimal
	IsBalanced bool
	Amount     decimal.Decimal
}

// DetailMutation is the complete write set of one balance-engine pass. The
// repository applies all of it inside a single database transaction so a
// crash can never leave stale cached totals behind a committed detail change.
type DetailMutation struct {
	Insert   *domain.TransactionDetail // nil if not inserting
	Update   *domain.TransactionDetail // nil if not updating
	DeleteID string                    // empty if not deleting
	BankRow  *domain.TransactionDetail // bank offset row upsert, nil to leave untouched
	Totals   HeaderTotals
}

// LedgerRepository persists transaction headers and details for every
// journal module.
type LedgerRepository interface {
	CreateHeader(ctx context.Context, header domain.TransactionHeader) error
	FindHeaderByID(ctx context.Context, module domain.ModuleType, transactionID string) (*domain.TransactionHeader, error)
	ListHeaders(ctx context.Context, module domain.ModuleType, companyID string, limit int, nextToken *string) ([]domain.TransactionHeader, *string, error)
	SetCancelState(ctx context.Context, module domain.ModuleType, transactionID string, state domain.CancelState, userID string, now time.Time) error
	NextDocNo(ctx context.Context, module domain.ModuleType, companyID string) (int64, error)

	FindDetails(ctx context.Context, module domain.ModuleType, transactionID string) ([]domain.TransactionDetail, error)
	FindDetailByID(ctx context.Context, module domain.ModuleType, detailID string) (*domain.TransactionDetail, error)

	// ApplyDetailMutation applies the detail change, the bank-row upsert and
	// the header totals atomically.
	ApplyDetailMutation(ctx context.Context, module domain.ModuleType, transactionID string, mutation DetailMutation, userID string, now time.Time) error
}

// AccountRepository reads GL account reference data. Reports and the balance
// engine only read accounts, never mutate them.
type AccountRepository interface {
	FindByCode(ctx context.Context, companyID string, code string) (*domain.Account, error)
	FindBankAccount(ctx context.Context, companyID string, bankID string) (*domain.Account, error)
}
