package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

// RepositoryContainer bundles every pgsql repository over one shared pool.
type RepositoryContainer struct {
	Ledger    portsrepo.LedgerRepository
	Account   portsrepo.AccountRepository
	Approval  portsrepo.ApprovalRepository
	Reporting portsrepo.ReportingRepository
}

// NewRepositoryContainer creates all repositories over the given pool.
func NewRepositoryContainer(pool *pgxpool.Pool) *RepositoryContainer {
	return &RepositoryContainer{
		Ledger:    NewPgxLedgerRepository(pool),
		Account:   NewPgxAccountRepository(pool),
		Approval:  NewPgxApprovalRepository(pool),
		Reporting: NewPgxReportingRepository(pool),
	}
}
