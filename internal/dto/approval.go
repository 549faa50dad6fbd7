package dto

import (
	"time"

	"github.com/agridane/erp_backend/internal/core/domain"
)

// RequestApprovalRequest opens a new approval cycle for a record mutation.
type RequestApprovalRequest struct {
	Module    string `json:"module" binding:"required"`
	RecordID  string `json:"recordID" binding:"required"`
	CompanyID string `json:"companyID" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=edit post unpost delete process"`
}

// DecideApprovalRequest approves or rejects a pending approval. ExpiresIn is
// the edit-window length in minutes, counted from the decision.
type DecideApprovalRequest struct {
	Approve   bool `json:"approve"`
	ExpiresIn int  `json:"expiresIn" binding:"omitempty,min=1,max=1440"`
}

// ReleaseApprovalRequest explicitly ends an edit session.
type ReleaseApprovalRequest struct {
	Module    string `json:"module" binding:"required"`
	RecordID  string `json:"recordID" binding:"required"`
	CompanyID string `json:"companyID" binding:"required"`
}

// ApprovalResponse describes one approval row.
type ApprovalResponse struct {
	ApprovalID  string     `json:"approvalID"`
	Module      string     `json:"module"`
	RecordID    string     `json:"recordID"`
	CompanyID   string     `json:"companyID"`
	Action      string     `json:"action"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	ConsumedAt  *time.Time `json:"consumedAt,omitempty"`
	FirstEditAt *time.Time `json:"firstEditAt,omitempty"`
}

// ToApprovalResponse converts a domain approval to its response DTO.
func ToApprovalResponse(a *domain.Approval) ApprovalResponse {
	return ApprovalResponse{
		ApprovalID:  a.ApprovalID,
		Module:      string(a.Module),
		RecordID:    a.RecordID,
		CompanyID:   a.CompanyID,
		Action:      string(a.Action),
		Status:      string(a.Status),
		ExpiresAt:   a.ExpiresAt,
		ConsumedAt:  a.ConsumedAt,
		FirstEditAt: a.FirstEditAt,
	}
}
