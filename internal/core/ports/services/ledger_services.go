package services

import (
	"context"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/agridane/erp_backend/internal/dto"
)

// LedgerSvcFacade exposes header lifecycle operations for every journal module.
type LedgerSvcFacade interface {
	CreateHeader(ctx context.Context, module domain.ModuleType, req dto.CreateHeaderRequest, creatorUserID string) (*domain.TransactionHeader, error)
	GetHeader(ctx context.Context, module domain.ModuleType, transactionID, companyID string) (*dto.GetHeaderResponse, error)
	ListHeaders(ctx context.Context, module domain.ModuleType, params dto.ListHeadersParams) (*dto.ListHeadersResponse, error)
	CancelHeader(ctx context.Context, module domain.ModuleType, transactionID, companyID, userID string) error
}

// BalanceSvcFacade is the balance engine: it owns every detail mutation so
// the derived totals and the bank offset row can never drift from the rows.
type BalanceSvcFacade interface {
	AddDetail(ctx context.Context, module domain.ModuleType, transactionID string, req dto.DetailRequest, companyID, userID string) (*dto.BalanceResponse, error)
	UpdateDetail(ctx context.Context, module domain.ModuleType, transactionID, detailID string, req dto.DetailRequest, companyID, userID string) (*dto.BalanceResponse, error)
	RemoveDetail(ctx context.Context, module domain.ModuleType, transactionID, detailID, companyID, userID string) (*dto.BalanceResponse, error)
	// RecalcTotals recomputes the cached header totals from scratch.
	RecalcTotals(ctx context.Context, module domain.ModuleType, transactionID, companyID, userID string) (*dto.BalanceResponse, error)
}
