package services

import (
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
)

// ContainerDeps bundles the adapters the service layer builds on.
type ContainerDeps struct {
	LedgerRepo    portsrepo.LedgerRepository
	AccountRepo   portsrepo.AccountRepository
	ApprovalRepo  portsrepo.ApprovalRepository
	ReportingRepo portsrepo.ReportingRepository
	JobStore      portsrepo.ReportJobStore
	ArtifactStore portsrepo.ArtifactStore
	Scheduler     ReportSchedulerConfig
}

// NewServiceContainer wires up all application services.
func NewServiceContainer(deps ContainerDeps) *portssvc.ServiceContainer {
	approvalSvc := NewApprovalService(deps.ApprovalRepo)
	builder := NewReportBuilder(deps.JobStore, deps.ArtifactStore, deps.ReportingRepo)

	return &portssvc.ServiceContainer{
		Ledger:   NewLedgerService(deps.LedgerRepo),
		Balance:  NewBalanceService(deps.LedgerRepo, deps.AccountRepo, approvalSvc),
		Approval: approvalSvc,
		Reports:  NewReportService(deps.JobStore, deps.ArtifactStore, builder, deps.Scheduler),
	}
}
