package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
	"github.com/agridane/erp_backend/internal/utils/accounting"
)

var (
	ErrDebitCreditExclusive = errors.New("exactly one of debit and credit must be positive")
	ErrDuplicateAccount     = errors.New("account code already used in this transaction")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrBankRowProtected     = errors.New("bank offset row is system maintained and cannot be edited directly")
	ErrTransactionInactive  = errors.New("transaction is cancelled or deleted")
)

// balanceService maintains the derived financial-balance state of a
// transaction after any detail-row mutation, including the system-maintained
// bank offset row of the cash modules.
type balanceService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepository
	accountRepo portsrepo.AccountRepository
	approvalSvc portssvc.ApprovalSvcFacade
}

// NewBalanceService creates the balance engine.
func NewBalanceService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, approvalSvc portssvc.ApprovalSvcFacade) portssvc.BalanceSvcFacade {
	return &balanceService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		approvalSvc: approvalSvc,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// AddDetail validates and inserts a new detail row, then rebalances the
// transaction. Bank-row adjustment runs before the totals recompute so the
// cached sums already reflect the corrected bank amount.
func (s *balanceService) AddDetail(ctx context.Context, module domain.ModuleType, transactionID string, req dto.DetailRequest, companyID, userID string) (*dto.BalanceResponse, error) {
	header, details, err := s.loadMutableTransaction(ctx, module, transactionID, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.validateDetailInput(ctx, header, details, req, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	detail := domain.TransactionDetail{
		DetailID:      uuid.NewString(),
		Module:        module,
		TransactionID: transactionID,
		AcctCode:      req.AcctCode,
		Debit:         accounting.Round2(req.Debit),
		Credit:        accounting.Round2(req.Credit),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	final := append(withoutDetail(details, ""), detail)
	mutation := portsrepo.DetailMutation{Insert: &detail}
	return s.commitMutation(ctx, header, final, mutation, userID, now)
}

// UpdateDetail replaces the amounts/account of an existing detail row. The
// mutation is gated by the approval workflow because the record is posted.
func (s *balanceService) UpdateDetail(ctx context.Context, module domain.ModuleType, transactionID, detailID string, req dto.DetailRequest, companyID, userID string) (*dto.BalanceResponse, error) {
	header, details, err := s.loadMutableTransaction(ctx, module, transactionID, companyID)
	if err != nil {
		return nil, err
	}

	existing := findDetail(details, detailID)
	if existing == nil {
		return nil, fmt.Errorf("detail %s: %w", detailID, apperrors.ErrNotFound)
	}
	if existing.IsBankRow() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrBankRowProtected)
	}

	if err := s.approvalSvc.RequireApprovedEdit(ctx, module, transactionID, companyID); err != nil {
		return nil, err
	}

	if err := s.validateDetailInput(ctx, header, details, req, detailID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := *existing
	updated.AcctCode = req.AcctCode
	updated.Debit = accounting.Round2(req.Debit)
	updated.Credit = accounting.Round2(req.Credit)
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	final := append(withoutDetail(details, detailID), updated)
	mutation := portsrepo.DetailMutation{Update: &updated}
	return s.commitMutation(ctx, header, final, mutation, userID, now)
}

// RemoveDetail deletes a detail row and rebalances. The bank offset row is
// not user-deletable.
func (s *balanceService) RemoveDetail(ctx context.Context, module domain.ModuleType, transactionID, detailID, companyID, userID string) (*dto.BalanceResponse, error) {
	header, details, err := s.loadMutableTransaction(ctx, module, transactionID, companyID)
	if err != nil {
		return nil, err
	}

	existing := findDetail(details, detailID)
	if existing == nil {
		return nil, fmt.Errorf("detail %s: %w", detailID, apperrors.ErrNotFound)
	}
	if existing.IsBankRow() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrBankRowProtected)
	}

	if err := s.approvalSvc.RequireApprovedEdit(ctx, module, transactionID, companyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	final := withoutDetail(details, detailID)
	mutation := portsrepo.DetailMutation{DeleteID: detailID}
	return s.commitMutation(ctx, header, final, mutation, userID, now)
}

// RecalcTotals recomputes the cached header totals from the detail rows. It
// is a full recomputation, not incremental, and therefore idempotent. It
// persists state like every other mutation, so it carries the same company
// scoping and active-state checks.
func (s *balanceService) RecalcTotals(ctx context.Context, module domain.ModuleType, transactionID, companyID, userID string) (*dto.BalanceResponse, error) {
	header, details, err := s.loadMutableTransaction(ctx, module, transactionID, companyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.commitMutation(ctx, header, details, portsrepo.DetailMutation{}, userID, now)
}

// loadMutableTransaction fetches the header and details and refuses
// mutations on cancelled/deleted or cross-company records. Existence is
// obscured for foreign companies.
func (s *balanceService) loadMutableTransaction(ctx context.Context, module domain.ModuleType, transactionID, companyID string) (*domain.TransactionHeader, []domain.TransactionDetail, error) {
	header, err := s.ledgerRepo.FindHeaderByID(ctx, module, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if header.CompanyID != companyID {
		s.LogWarn(ctx, "Transaction accessed from wrong company",
			slog.String("transaction_id", transactionID),
			slog.String("transaction_company", header.CompanyID),
			slog.String("requested_company", companyID))
		return nil, nil, apperrors.ErrNotFound
	}
	if header.Cancel != domain.StateActive {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrTransactionInactive)
	}

	details, err := s.ledgerRepo.FindDetails(ctx, module, transactionID)
	if err != nil {
		return nil, nil, err
	}
	return header, details, nil
}

// validateDetailInput enforces the debit-XOR-credit contract, the account
// reference rules and the per-module duplicate policy. excludeDetailID skips
// the row being updated in the duplicate check.
func (s *balanceService) validateDetailInput(ctx context.Context, header *domain.TransactionHeader, details []domain.TransactionDetail, req dto.DetailRequest, excludeDetailID string) error {
	if err := accounting.ValidateDetailAmounts(req.Debit, req.Credit); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrDebitCreditExclusive)
	}

	account, err := s.accountRepo.FindByCode(ctx, header.CompanyID, req.AcctCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s not found for company %s", apperrors.ErrValidation, req.AcctCode, header.CompanyID)
		}
		return fmt.Errorf("failed to look up account %s: %w", req.AcctCode, err)
	}
	if !account.IsActive {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountInactive, req.AcctCode)
	}

	policy := domain.PolicyFor(header.Module)
	if !policy.AllowDuplicateAccounts {
		for _, d := range details {
			if d.DetailID == excludeDetailID || d.IsBankRow() {
				continue
			}
			if d.AcctCode == req.AcctCode {
				return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrDuplicateAccount, req.AcctCode)
			}
		}
	}
	return nil
}

// commitMutation runs bank-row adjustment, recomputes the totals over the
// final detail set and persists everything atomically through the repository.
func (s *balanceService) commitMutation(ctx context.Context, header *domain.TransactionHeader, final []domain.TransactionDetail, mutation portsrepo.DetailMutation, userID string, now time.Time) (*dto.BalanceResponse, error) {
	policy := domain.PolicyFor(header.Module)

	if policy.HasBankRow && header.BankID != nil {
		bankRow, err := s.adjustBankRow(ctx, header, final, userID, now)
		if err != nil {
			return nil, err
		}
		if bankRow != nil {
			mutation.BankRow = bankRow
			final = append(withoutBankRow(final), *bankRow)
		}
	}

	debit, credit := accounting.SumDetails(final)
	balanced := accounting.IsBalanced(debit, credit)
	mutation.Totals = portsrepo.HeaderTotals{
		SumDebit:   debit,
		SumCredit:  credit,
		IsBalanced: balanced,
		Amount:     accounting.LegacyAmount(policy, debit, credit),
	}

	if err := s.ledgerRepo.ApplyDetailMutation(ctx, header.Module, header.TransactionID, mutation, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to persist detail mutation",
			slog.String("module", string(header.Module)),
			slog.String("transaction_id", header.TransactionID))
		return nil, fmt.Errorf("failed to persist detail mutation: %w", err)
	}

	s.LogInfo(ctx, "Transaction rebalanced",
		slog.String("module", string(header.Module)),
		slog.String("transaction_id", header.TransactionID),
		slog.String("sum_debit", debit.String()),
		slog.String("sum_credit", credit.String()),
		slog.Bool("balanced", balanced))

	return &dto.BalanceResponse{Debit: debit, Credit: credit, Balanced: balanced}, nil
}

// adjustBankRow resolves the bank's GL account and returns the corrected
// bank offset row for the transaction, creating it when absent. The amount
// is floored at zero, so an overdrawn posting surfaces as unbalanced instead
// of a negative bank line.
func (s *balanceService) adjustBankRow(ctx context.Context, header *domain.TransactionHeader, details []domain.TransactionDetail, userID string, now time.Time) (*domain.TransactionDetail, error) {
	bankAccount, err := s.accountRepo.FindBankAccount(ctx, header.CompanyID, *header.BankID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// No GL account is linked to the bank; the transaction stays
			// without an offset row and will read as unbalanced.
			s.LogWarn(ctx, "No GL account linked to bank, skipping bank row",
				slog.String("bank_id", *header.BankID),
				slog.String("transaction_id", header.TransactionID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve bank account: %w", err)
	}

	debitExcl, creditExcl := accounting.SumDetails(withoutBankRow(details))
	bankDebit, bankCredit, err := accounting.BankRowAmounts(header.Module, debitExcl, creditExcl)
	if err != nil {
		return nil, err
	}

	row := domain.TransactionDetail{
		Module:        header.Module,
		TransactionID: header.TransactionID,
		AcctCode:      bankAccount.Code,
		Debit:         bankDebit,
		Credit:        bankCredit,
		WorkstationID: domain.BankRowTag,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if existing := findBankRow(details); existing != nil {
		row.DetailID = existing.DetailID
		row.CreatedAt = existing.CreatedAt
		row.CreatedBy = existing.CreatedBy
	} else {
		row.DetailID = uuid.NewString()
	}
	return &row, nil
}

func findDetail(details []domain.TransactionDetail, detailID string) *domain.TransactionDetail {
	for i := range details {
		if details[i].DetailID == detailID {
			return &details[i]
		}
	}
	return nil
}

func findBankRow(details []domain.TransactionDetail) *domain.TransactionDetail {
	for i := range details {
		if details[i].IsBankRow() {
			return &details[i]
		}
	}
	return nil
}

func withoutDetail(details []domain.TransactionDetail, detailID string) []domain.TransactionDetail {
	result := make([]domain.TransactionDetail, 0, len(details))
	for _, d := range details {
		if detailID != "" && d.DetailID == detailID {
			continue
		}
		result = append(result, d)
	}
	return result
}

func withoutBankRow(details []domain.TransactionDetail) []domain.TransactionDetail {
	result := make([]domain.TransactionDetail, 0, len(details))
	for _, d := range details {
		if d.IsBankRow() {
			continue
		}
		result = append(result, d)
	}
	return result
}
