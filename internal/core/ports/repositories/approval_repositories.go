package repositories

import (
	"context"
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
)

// ApprovalRepository persists the approval workflow rows gating mutations to
// posted financial records.
type ApprovalRepository interface {
	Create(ctx context.Context, approval domain.Approval) error
	FindByID(ctx context.Context, approvalID string) (*domain.Approval, error)
	// FindLatestUsable returns the most recent approval matching
	// (module, record, company, action) that is approved, unconsumed and
	// unexpired at now, or apperrors.ErrNotFound.
	FindLatestUsable(ctx context.Context, module domain.ModuleType, recordID, companyID string, action domain.ApprovalAction, now time.Time) (*domain.Approval, error)
	Decide(ctx context.Context, approvalID string, status domain.ApprovalStatus, approverID string, expiresAt time.Time, now time.Time) error
	// StampFirstEdit sets first_edit_at if it is still null. Audit only.
	StampFirstEdit(ctx context.Context, approvalID string, now time.Time) error
	Consume(ctx context.Context, approvalID string, now time.Time) error
}
