package services

import (
	"context"

	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/agridane/erp_backend/internal/dto"
)

// ApprovalSvcFacade is the approval gate plus the workflow bookkeeping around it.
type ApprovalSvcFacade interface {
	// RequireApprovedEdit returns nil when an active, unconsumed, unexpired
	// edit approval exists for the record; apperrors.ErrForbidden otherwise.
	// On success the gate stamps first_edit_at as a separate write.
	RequireApprovedEdit(ctx context.Context, module domain.ModuleType, recordID, companyID string) error
	// ReleaseApproval consumes the current approval, ending the edit session.
	ReleaseApproval(ctx context.Context, module domain.ModuleType, recordID, companyID string) error
	RequestApproval(ctx context.Context, req dto.RequestApprovalRequest, requesterID string) (*domain.Approval, error)
	Decide(ctx context.Context, approvalID string, req dto.DecideApprovalRequest, approverID string) (*domain.Approval, error)
}
