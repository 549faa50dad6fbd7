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
)

var (
	ErrNoUsableApproval = errors.New("no active edit approval for this record")
	ErrAlreadyDecided   = errors.New("approval has already been decided")
)

// defaultEditWindow is the edit-window length when the approver does not
// specify one.
const defaultEditWindow = time.Hour

// approvalService authorizes mutations to posted financial records.
type approvalService struct {
	BaseService
	approvalRepo portsrepo.ApprovalRepository
}

// NewApprovalService creates the approval gate.
func NewApprovalService(approvalRepo portsrepo.ApprovalRepository) portssvc.ApprovalSvcFacade {
	return &approvalService{approvalRepo: approvalRepo}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// RequireApprovedEdit checks for an approved, unconsumed, unexpired edit
// approval on the record. The predicate itself is effect-free; the
// first-edit audit stamp is issued as a separate write after authorization
// succeeds and never affects the outcome.
func (s *approvalService) RequireApprovedEdit(ctx context.Context, module domain.ModuleType, recordID, companyID string) error {
	now := time.Now().UTC()
	approval, err := s.approvalRepo.FindLatestUsable(ctx, module, recordID, companyID, domain.ActionEdit, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Edit rejected, no usable approval",
				slog.String("module", string(module)),
				slog.String("record_id", recordID),
				slog.String("company_id", companyID))
			return fmt.Errorf("%w: %w", apperrors.ErrForbidden, ErrNoUsableApproval)
		}
		return fmt.Errorf("failed to look up approval: %w", err)
	}

	if approval.FirstEditAt == nil {
		if err := s.approvalRepo.StampFirstEdit(ctx, approval.ApprovalID, now); err != nil {
			// Audit only, never blocks an authorized edit.
			s.LogWarn(ctx, "Failed to stamp first edit on approval",
				slog.String("approval_id", approval.ApprovalID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// ReleaseApproval consumes the current edit approval, explicitly ending the
// edit session. Single use per approval cycle.
func (s *approvalService) ReleaseApproval(ctx context.Context, module domain.ModuleType, recordID, companyID string) error {
	now := time.Now().UTC()
	approval, err := s.approvalRepo.FindLatestUsable(ctx, module, recordID, companyID, domain.ActionEdit, now)
	if err != nil {
		return err // propagate ErrNotFound
	}
	if err := s.approvalRepo.Consume(ctx, approval.ApprovalID, now); err != nil {
		return fmt.Errorf("failed to consume approval %s: %w", approval.ApprovalID, err)
	}
	s.LogInfo(ctx, "Approval released",
		slog.String("approval_id", approval.ApprovalID),
		slog.String("module", string(module)),
		slog.String("record_id", recordID))
	return nil
}

// RequestApproval opens a new pending approval cycle.
func (s *approvalService) RequestApproval(ctx context.Context, req dto.RequestApprovalRequest, requesterID string) (*domain.Approval, error) {
	module, err := domain.ParseModuleType(req.Module)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	approval := domain.Approval{
		ApprovalID:  uuid.NewString(),
		Module:      module,
		RecordID:    req.RecordID,
		CompanyID:   req.CompanyID,
		Action:      domain.ApprovalAction(req.Action),
		Status:      domain.ApprovalPending,
		RequesterID: requesterID,
		// Placeholder until the decision sets the real window.
		ExpiresAt: now.Add(24 * time.Hour),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requesterID,
			LastUpdatedAt: now,
			LastUpdatedBy: requesterID,
		},
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		s.LogError(ctx, err, "Failed to create approval request")
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}
	s.LogInfo(ctx, "Approval requested",
		slog.String("approval_id", approval.ApprovalID),
		slog.String("module", string(module)),
		slog.String("record_id", req.RecordID),
		slog.String("action", req.Action))
	return &approval, nil
}

// Decide approves or rejects a pending approval. Approval starts the edit
// window clock.
func (s *approvalService) Decide(ctx context.Context, approvalID string, req dto.DecideApprovalRequest, approverID string) (*domain.Approval, error) {
	approval, err := s.approvalRepo.FindByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.Status != domain.ApprovalPending {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrAlreadyDecided)
	}

	now := time.Now().UTC()
	status := domain.ApprovalRejected
	expiresAt := approval.ExpiresAt
	if req.Approve {
		status = domain.ApprovalApproved
		window := defaultEditWindow
		if req.ExpiresIn > 0 {
			window = time.Duration(req.ExpiresIn) * time.Minute
		}
		expiresAt = now.Add(window)
	}

	if err := s.approvalRepo.Decide(ctx, approvalID, status, approverID, expiresAt, now); err != nil {
		s.LogError(ctx, err, "Failed to persist approval decision", slog.String("approval_id", approvalID))
		return nil, fmt.Errorf("failed to persist approval decision: %w", err)
	}

	approval.Status = status
	approval.ApprovedBy = &approverID
	approval.ExpiresAt = expiresAt
	approval.LastUpdatedAt = now
	approval.LastUpdatedBy = approverID

	s.LogInfo(ctx, "Approval decided",
		slog.String("approval_id", approvalID),
		slog.String("status", string(status)))
	return approval, nil
}
