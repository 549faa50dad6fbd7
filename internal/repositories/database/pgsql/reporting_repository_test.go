package pgsql

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

func testLedgerQuery() portsrepo.LedgerQuery {
	return portsrepo.LedgerQuery{
		CompanyID: "company-1",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestLinesCTE_EveryJoinIsCompanyScoped(t *testing.T) {
	sql, args := linesCTE(testLedgerQuery())

	// All five module branches join the shared reference tables; each join
	// must carry the header's company_id so one tenant's rows can never
	// resolve against another tenant's accounts or counterparties.
	assert.Equal(t, 5, strings.Count(sql, "JOIN accounts a ON a.company_id = h.company_id"))
	assert.Equal(t, 5, strings.Count(sql, "LEFT JOIN counterparties p ON p.company_id = h.company_id"))
	assert.Equal(t, 5, strings.Count(sql, "h.company_id = $1"))

	require.Len(t, args, 3)
	assert.Equal(t, "company-1", args[0])
}

func TestLinesCTE_ModuleSubsetAndFilters(t *testing.T) {
	q := testLedgerQuery()
	q.Modules = []domain.ModuleType{domain.CashDisbursement}
	q.AcctFrom = "1000"
	q.AcctTo = "5999"
	q.Query = "rent"

	sql, args := linesCTE(q)

	assert.Equal(t, 1, strings.Count(sql, "JOIN cd_header h"))
	assert.NotContains(t, sql, "cr_header")
	assert.Contains(t, sql, "d.acct_code >= $4")
	assert.Contains(t, sql, "d.acct_code <= $5")
	assert.Contains(t, sql, "ILIKE $6")

	require.Len(t, args, 6)
	assert.Equal(t, "%rent%", args[5])
}

func TestLinesCTE_ActiveFilterPerEncoding(t *testing.T) {
	sql, _ := linesCTE(testLedgerQuery())

	// Char-flag modules filter on the encoded active flag, bool-pair modules
	// on the two flags; bank offset rows are tagged for the builders.
	assert.Contains(t, sql, "h.cancel_flag = 'n'")
	assert.Contains(t, sql, "NOT h.is_cancel AND NOT h.is_deleted")
	assert.Contains(t, sql, "d.workstation_id = 'BANK' AS bank_row")
}
