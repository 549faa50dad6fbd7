package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// NewPgxReportingRepository creates the read-only reporting repository.
func NewPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// linesCTE builds the UNION ALL over the per-module header tables, producing
// one uniform line shape. Only active transactions feed reports; cancelled
// and deleted ones are filtered inside each branch. Every join carries the
// header's company_id so shared reference tables never leak across tenants.
// The same positional arguments are shared across branches.
func linesCTE(q portsrepo.LedgerQuery) (string, []any) {
	modules := q.Modules
	if len(modules) == 0 {
		modules = []domain.ModuleType{
			domain.CashReceipt, domain.CashDisbursement, domain.CashSales,
			domain.CashPurchase, domain.GeneralAccounting,
		}
	}

	args := []any{q.CompanyID, q.StartDate, q.EndDate}
	var extra strings.Builder
	if q.AcctFrom != "" {
		args = append(args, q.AcctFrom)
		fmt.Fprintf(&extra, " AND d.acct_code >= $%d", len(args))
	}
	if q.AcctTo != "" {
		args = append(args, q.AcctTo)
		fmt.Fprintf(&extra, " AND d.acct_code <= $%d", len(args))
	}
	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		fmt.Fprintf(&extra, " AND (h.explanation ILIKE $%d OR COALESCE(p.name, '') ILIKE $%d)", len(args), len(args))
	}

	branches := make([]string, 0, len(modules))
	for _, module := range modules {
		t := tableFor(module)
		activeFilter := "NOT h.is_cancel AND NOT h.is_deleted"
		if t.charFlag {
			activeFlag := domain.CodecFor(module).Encode(domain.StateActive).Flag
			activeFilter = fmt.Sprintf("h.cancel_flag = '%s'", activeFlag)
		}
		branches = append(branches, fmt.Sprintf(`
			SELECT d.module, d.transaction_id, h.%s AS doc_no, h.txn_date, d.acct_code,
				a.description AS acct_description, a.category, COALESCE(p.name, '') AS counterparty_name,
				h.explanation, d.debit, d.credit, d.workstation_id = '%s' AS bank_row
			FROM transaction_details d
			JOIN %s h ON h.transaction_id = d.transaction_id
			JOIN accounts a ON a.company_id = h.company_id AND a.code = d.acct_code
			LEFT JOIN counterparties p ON p.company_id = h.company_id AND p.counterparty_id = h.counterparty_id
			WHERE d.module = '%s' AND h.company_id = $1
				AND h.txn_date >= $2 AND h.txn_date <= $3
				AND %s%s`,
			t.docNoCol, domain.BankRowTag, t.header, module, activeFilter, extra.String()))
	}

	return "WITH lines AS (" + strings.Join(branches, "\n\t\t\tUNION ALL\n") + ")", args
}

func (r *PgxReportingRepository) GetLedgerLines(ctx context.Context, q portsrepo.LedgerQuery) ([]domain.LedgerLine, error) {
	cte, args := linesCTE(q)
	query := cte + `
		SELECT module, transaction_id, doc_no, txn_date, acct_code, acct_description, category,
			counterparty_name, explanation, debit, credit, bank_row
		FROM lines
		ORDER BY acct_code, txn_date, doc_no;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		var line domain.LedgerLine
		if err := rows.Scan(&line.Module, &line.TransactionID, &line.DocNo, &line.Date, &line.AcctCode,
			&line.AcctDescription, &line.Category, &line.CounterpartyName, &line.Explanation,
			&line.Debit, &line.Credit, &line.BankRow); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger lines: %w", err)
	}
	return lines, nil
}

func (r *PgxReportingRepository) GetTrialBalanceRows(ctx context.Context, q portsrepo.LedgerQuery) ([]domain.TrialBalanceRow, error) {
	cte, args := linesCTE(q)
	query := cte + `
		SELECT acct_code, acct_description, category, SUM(debit) AS debit, SUM(credit) AS credit
		FROM lines
		GROUP BY acct_code, acct_description, category
		ORDER BY acct_code;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance rows: %w", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AcctCode, &row.AcctDescription, &row.Category, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trial balance rows: %w", err)
	}
	return result, nil
}
