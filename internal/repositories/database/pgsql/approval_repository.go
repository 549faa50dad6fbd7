package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

const approvalColumns = "approval_id, module, record_id, company_id, action, status, requester_id, approved_by, expires_at, consumed_at, first_edit_at, created_at, created_by, last_updated_at, last_updated_by"

type PgxApprovalRepository struct {
	BaseRepository
}

// NewPgxApprovalRepository creates the approval workflow repository.
func NewPgxApprovalRepository(pool *pgxpool.Pool) portsrepo.ApprovalRepository {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ApprovalRepository = (*PgxApprovalRepository)(nil)

func (r *PgxApprovalRepository) Create(ctx context.Context, approval domain.Approval) error {
	query := `
		INSERT INTO approvals (approval_id, module, record_id, company_id, action, status, requester_id,
			approved_by, expires_at, consumed_at, first_edit_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		approval.ApprovalID, approval.Module, approval.RecordID, approval.CompanyID,
		approval.Action, approval.Status, approval.RequesterID,
		approval.ApprovedBy, approval.ExpiresAt, approval.ConsumedAt, approval.FirstEditAt,
		approval.CreatedAt, approval.CreatedBy, approval.LastUpdatedAt, approval.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert approval %s: %w", approval.ApprovalID, err)
	}
	return nil
}

func (r *PgxApprovalRepository) FindByID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	query := fmt.Sprintf("SELECT %s FROM approvals WHERE approval_id = $1;", approvalColumns)
	return r.scanApproval(r.Pool.QueryRow(ctx, query, approvalID))
}

func (r *PgxApprovalRepository) FindLatestUsable(ctx context.Context, module domain.ModuleType, recordID, companyID string, action domain.ApprovalAction, now time.Time) (*domain.Approval, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM approvals
		WHERE module = $1 AND record_id = $2 AND company_id = $3 AND action = $4
			AND status = $5 AND consumed_at IS NULL AND expires_at > $6
		ORDER BY created_at DESC
		LIMIT 1;
	`, approvalColumns)
	return r.scanApproval(r.Pool.QueryRow(ctx, query, module, recordID, companyID, action, domain.ApprovalApproved, now))
}

func (r *PgxApprovalRepository) Decide(ctx context.Context, approvalID string, status domain.ApprovalStatus, approverID string, expiresAt time.Time, now time.Time) error {
	query := `
		UPDATE approvals SET status = $2, approved_by = $3, expires_at = $4, last_updated_at = $5, last_updated_by = $3
		WHERE approval_id = $1 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, approvalID, status, approverID, expiresAt, now, domain.ApprovalPending)
	if err != nil {
		return fmt.Errorf("failed to decide approval %s: %w", approvalID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already decided; the guard makes double decides lose.
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PgxApprovalRepository) StampFirstEdit(ctx context.Context, approvalID string, now time.Time) error {
	query := "UPDATE approvals SET first_edit_at = $2 WHERE approval_id = $1 AND first_edit_at IS NULL;"
	if _, err := r.Pool.Exec(ctx, query, approvalID, now); err != nil {
		return fmt.Errorf("failed to stamp first edit on %s: %w", approvalID, err)
	}
	return nil
}

func (r *PgxApprovalRepository) Consume(ctx context.Context, approvalID string, now time.Time) error {
	query := "UPDATE approvals SET consumed_at = $2, last_updated_at = $2 WHERE approval_id = $1 AND consumed_at IS NULL;"
	tag, err := r.Pool.Exec(ctx, query, approvalID, now)
	if err != nil {
		return fmt.Errorf("failed to consume approval %s: %w", approvalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PgxApprovalRepository) scanApproval(row pgx.Row) (*domain.Approval, error) {
	var a domain.Approval
	err := row.Scan(&a.ApprovalID, &a.Module, &a.RecordID, &a.CompanyID, &a.Action, &a.Status,
		&a.RequesterID, &a.ApprovedBy, &a.ExpiresAt, &a.ConsumedAt, &a.FirstEditAt,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan approval: %w", err)
	}
	return &a, nil
}
