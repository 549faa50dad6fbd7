package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
)

// ledgerService manages transaction header lifecycles. Detail mutations go
// through the balance engine, never through here.
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepository
}

// NewLedgerService creates the header lifecycle service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateHeader stores a header-only transaction with zero totals. An empty
// transaction is trivially balanced at 0 = 0.
func (s *ledgerService) CreateHeader(ctx context.Context, module domain.ModuleType, req dto.CreateHeaderRequest, creatorUserID string) (*domain.TransactionHeader, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}

	docNo, err := s.ledgerRepo.NextDocNo(ctx, module, req.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate document number",
			slog.String("module", string(module)),
			slog.String("company_id", req.CompanyID))
		return nil, fmt.Errorf("failed to allocate document number: %w", err)
	}

	now := time.Now().UTC()
	header := domain.TransactionHeader{
		TransactionID:  uuid.NewString(),
		Module:         module,
		DocNo:          docNo,
		Date:           date,
		CounterpartyID: req.CounterpartyID,
		BankID:         req.BankID,
		Explanation:    req.Explanation,
		CompanyID:      req.CompanyID,
		Cancel:         domain.StateActive,
		SumDebit:       decimal.Zero,
		SumCredit:      decimal.Zero,
		IsBalanced:     true,
		Amount:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.ledgerRepo.CreateHeader(ctx, header); err != nil {
		s.LogError(ctx, err, "Failed to create transaction header", slog.String("module", string(module)))
		return nil, fmt.Errorf("failed to create transaction header: %w", err)
	}

	s.LogInfo(ctx, "Transaction header created",
		slog.String("module", string(module)),
		slog.String("transaction_id", header.TransactionID),
		slog.Int64("doc_no", docNo))
	return &header, nil
}

// GetHeader returns a header with its detail rows, scoped to the company.
func (s *ledgerService) GetHeader(ctx context.Context, module domain.ModuleType, transactionID, companyID string) (*dto.GetHeaderResponse, error) {
	header, err := s.ledgerRepo.FindHeaderByID(ctx, module, transactionID)
	if err != nil {
		return nil, err
	}
	if header.CompanyID != companyID {
		// Obscure existence across companies.
		return nil, apperrors.ErrNotFound
	}

	details, err := s.ledgerRepo.FindDetails(ctx, module, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch details", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to fetch details for %s: %w", transactionID, apperrors.ErrInternal)
	}

	return &dto.GetHeaderResponse{
		Header:  dto.ToHeaderResponse(header),
		Details: dto.ToDetailResponses(details),
	}, nil
}

// ListHeaders returns a page of headers for the company. Deleted records are
// hidden by the repository.
func (s *ledgerService) ListHeaders(ctx context.Context, module domain.ModuleType, params dto.ListHeadersParams) (*dto.ListHeadersResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	headers, nextToken, err := s.ledgerRepo.ListHeaders(ctx, module, params.CompanyID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list headers", slog.String("module", string(module)))
		return nil, fmt.Errorf("failed to list headers: %w", err)
	}

	responses := make([]dto.HeaderResponse, len(headers))
	for i := range headers {
		responses[i] = dto.ToHeaderResponse(&headers[i])
	}
	return &dto.ListHeadersResponse{Headers: responses, NextToken: nextToken}, nil
}

// CancelHeader soft-cancels a transaction: the flag flips, detail rows stay.
func (s *ledgerService) CancelHeader(ctx context.Context, module domain.ModuleType, transactionID, companyID, userID string) error {
	header, err := s.ledgerRepo.FindHeaderByID(ctx, module, transactionID)
	if err != nil {
		return err
	}
	if header.CompanyID != companyID {
		return apperrors.ErrNotFound
	}
	if header.Cancel != domain.StateActive {
		return fmt.Errorf("%w: transaction is already %s", apperrors.ErrConflict, header.Cancel)
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.SetCancelState(ctx, module, transactionID, domain.StateCancelled, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to cancel transaction", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction cancelled",
		slog.String("module", string(module)),
		slog.String("transaction_id", transactionID))
	return nil
}
