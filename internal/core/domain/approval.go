package domain

import "time"

// ApprovalAction is the mutation an approval authorizes.
type ApprovalAction string

const (
	ActionEdit    ApprovalAction = "edit"
	ActionPost    ApprovalAction = "post"
	ActionUnpost  ApprovalAction = "unpost"
	ActionDelete  ApprovalAction = "delete"
	ActionProcess ApprovalAction = "process"
)

// ApprovalStatus is the decision state of an approval request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is a time-boxed, single-use authorization token gating a specific
// mutation on a specific record. Consumption is explicit (release), so
// multiple edits fit inside one window.
type Approval struct {
	ApprovalID  string         `json:"approvalID"`
	Module      ModuleType     `json:"module"`
	RecordID    string         `json:"recordID"`
	CompanyID   string         `json:"companyID"`
	Action      ApprovalAction `json:"action"`
	Status      ApprovalStatus `json:"status"`
	RequesterID string         `json:"requesterID"`
	ApprovedBy  *string        `json:"approvedBy,omitempty"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	ConsumedAt  *time.Time     `json:"consumedAt,omitempty"`
	FirstEditAt *time.Time     `json:"firstEditAt,omitempty"`
	AuditFields
}

// Usable reports whether the approval still authorizes its action at the
// given instant: approved, unconsumed and unexpired.
func (a Approval) Usable(now time.Time) bool {
	return a.Status == ApprovalApproved && a.ConsumedAt == nil && now.Before(a.ExpiresAt)
}
