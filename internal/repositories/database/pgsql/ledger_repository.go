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
	"github.com/agridane/erp_backend/internal/utils/pagination"
)

// moduleTable maps a journal module to its legacy header table layout. The
// per-module document number column names and the two cancel-flag encodings
// are kept as-is so existing data keeps working.
type moduleTable struct {
	header   string
	docNoCol string
	charFlag bool // single cancel_flag column; false means is_cancel/is_deleted pair
}

func tableFor(module domain.ModuleType) moduleTable {
	switch module {
	case domain.CashReceipt:
		return moduleTable{header: "cr_header", docNoCol: "cr_no", charFlag: true}
	case domain.CashDisbursement:
		return moduleTable{header: "cd_header", docNoCol: "cd_no", charFlag: true}
	case domain.CashSales:
		return moduleTable{header: "cs_header", docNoCol: "cs_no"}
	case domain.CashPurchase:
		return moduleTable{header: "cp_header", docNoCol: "cp_no"}
	case domain.GeneralAccounting:
		return moduleTable{header: "ga_header", docNoCol: "ga_no", charFlag: true}
	}
	return moduleTable{}
}

// cancelSelect returns the select expression that normalizes both cancel
// encodings into (flag, is_cancel, is_deleted).
func (t moduleTable) cancelSelect() string {
	if t.charFlag {
		return "cancel_flag, false, false"
	}
	return "'', is_cancel, is_deleted"
}

func (t moduleTable) headerColumns() string {
	return fmt.Sprintf(
		"transaction_id, %s, txn_date, counterparty_id, bank_id, explanation, company_id, %s, sum_debit, sum_credit, is_balanced, amount, created_at, created_by, last_updated_at, last_updated_by",
		t.docNoCol, t.cancelSelect())
}

type PgxLedgerRepository struct {
	BaseRepository
}

// NewPgxLedgerRepository creates the repository for transaction headers and details.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) CreateHeader(ctx context.Context, header domain.TransactionHeader) error {
	t := tableFor(header.Module)
	if t.header == "" {
		return fmt.Errorf("unknown module %q", header.Module)
	}
	flags := domain.CodecFor(header.Module).Encode(header.Cancel)

	var query string
	var cancelArgs []any
	if t.charFlag {
		query = fmt.Sprintf(`
			INSERT INTO %s (
				transaction_id, %s, txn_date, counterparty_id, bank_id, explanation, company_id,
				cancel_flag, sum_debit, sum_credit, is_balanced, amount,
				created_at, created_by, last_updated_at, last_updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
		`, t.header, t.docNoCol)
		cancelArgs = []any{flags.Flag}
	} else {
		query = fmt.Sprintf(`
			INSERT INTO %s (
				transaction_id, %s, txn_date, counterparty_id, bank_id, explanation, company_id,
				is_cancel, is_deleted, sum_debit, sum_credit, is_balanced, amount,
				created_at, created_by, last_updated_at, last_updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
		`, t.header, t.docNoCol)
		cancelArgs = []any{flags.IsCancel, flags.IsDeleted}
	}

	args := []any{
		header.TransactionID, header.DocNo, header.Date, header.CounterpartyID,
		header.BankID, header.Explanation, header.CompanyID,
	}
	args = append(args, cancelArgs...)
	args = append(args,
		header.SumDebit, header.SumCredit, header.IsBalanced, header.Amount,
		header.CreatedAt, header.CreatedBy, header.LastUpdatedAt, header.LastUpdatedBy,
	)

	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert header %s: %w", header.TransactionID, err)
	}
	return nil
}

func (r *PgxLedgerRepository) FindHeaderByID(ctx context.Context, module domain.ModuleType, transactionID string) (*domain.TransactionHeader, error) {
	t := tableFor(module)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE transaction_id = $1;", t.headerColumns(), t.header)
	header, err := r.scanHeader(module, r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find header %s: %w", transactionID, err)
	}
	return header, nil
}

func (r *PgxLedgerRepository) ListHeaders(ctx context.Context, module domain.ModuleType, companyID string, limit int, nextToken *string) ([]domain.TransactionHeader, *string, error) {
	t := tableFor(module)
	notDeleted := "NOT is_deleted"
	if t.charFlag {
		deletedFlag := domain.CodecFor(module).Encode(domain.StateDeleted).Flag
		notDeleted = fmt.Sprintf("cancel_flag <> '%s'", deletedFlag)
	}

	args := []any{companyID}
	cursor := ""
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		cursor = fmt.Sprintf(" AND (created_at, transaction_id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, createdAt, id)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE company_id = $1 AND %s%s
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $%d;
	`, t.headerColumns(), t.header, notDeleted, cursor, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list headers: %w", err)
	}
	defer rows.Close()

	var headers []domain.TransactionHeader
	for rows.Next() {
		header, err := r.scanHeader(module, rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan header: %w", err)
		}
		headers = append(headers, *header)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate headers: %w", err)
	}

	var token *string
	if len(headers) > limit {
		headers = headers[:limit]
		last := headers[len(headers)-1]
		s := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		token = &s
	}
	return headers, token, nil
}

func (r *PgxLedgerRepository) SetCancelState(ctx context.Context, module domain.ModuleType, transactionID string, state domain.CancelState, userID string, now time.Time) error {
	t := tableFor(module)
	flags := domain.CodecFor(module).Encode(state)

	var query string
	var args []any
	if t.charFlag {
		query = fmt.Sprintf(`
			UPDATE %s SET cancel_flag = $2, last_updated_at = $3, last_updated_by = $4
			WHERE transaction_id = $1;
		`, t.header)
		args = []any{transactionID, flags.Flag, now, userID}
	} else {
		query = fmt.Sprintf(`
			UPDATE %s SET is_cancel = $2, is_deleted = $3, last_updated_at = $4, last_updated_by = $5
			WHERE transaction_id = $1;
		`, t.header)
		args = []any{transactionID, flags.IsCancel, flags.IsDeleted, now, userID}
	}

	tag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set cancel state on %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// NextDocNo allocates the next sequential document number per company. The
// legacy max+1 allocation is kept; the unique (company_id, doc no) index
// turns a race into a retryable insert error instead of a duplicate number.
func (r *PgxLedgerRepository) NextDocNo(ctx context.Context, module domain.ModuleType, companyID string) (int64, error) {
	t := tableFor(module)
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE company_id = $1;", t.docNoCol, t.header)
	var docNo int64
	if err := r.Pool.QueryRow(ctx, query, companyID).Scan(&docNo); err != nil {
		return 0, fmt.Errorf("failed to allocate doc no: %w", err)
	}
	return docNo, nil
}

const detailColumns = "detail_id, module, transaction_id, acct_code, debit, credit, workstation_id, created_at, created_by, last_updated_at, last_updated_by"

func (r *PgxLedgerRepository) FindDetails(ctx context.Context, module domain.ModuleType, transactionID string) ([]domain.TransactionDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transaction_details
		WHERE module = $1 AND transaction_id = $2
		ORDER BY created_at, detail_id;
	`, detailColumns)

	rows, err := r.Pool.Query(ctx, query, module, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query details for %s: %w", transactionID, err)
	}
	defer rows.Close()

	var details []domain.TransactionDetail
	for rows.Next() {
		var d domain.TransactionDetail
		if err := rows.Scan(&d.DetailID, &d.Module, &d.TransactionID, &d.AcctCode, &d.Debit, &d.Credit,
			&d.WorkstationID, &d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate details: %w", err)
	}
	return details, nil
}

func (r *PgxLedgerRepository) FindDetailByID(ctx context.Context, module domain.ModuleType, detailID string) (*domain.TransactionDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM transaction_details WHERE module = $1 AND detail_id = $2;", detailColumns)
	var d domain.TransactionDetail
	err := r.Pool.QueryRow(ctx, query, module, detailID).Scan(
		&d.DetailID, &d.Module, &d.TransactionID, &d.AcctCode, &d.Debit, &d.Credit,
		&d.WorkstationID, &d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find detail %s: %w", detailID, err)
	}
	return &d, nil
}

// ApplyDetailMutation applies the detail change, the bank-row upsert and the
// header totals inside one database transaction. Either everything lands or
// nothing does; the cached totals can never drift from the committed rows.
func (r *PgxLedgerRepository) ApplyDetailMutation(ctx context.Context, module domain.ModuleType, transactionID string, mutation portsrepo.DetailMutation, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if mutation.Insert != nil {
		if err := r.insertDetail(ctx, tx, *mutation.Insert); err != nil {
			return err
		}
	}
	if mutation.Update != nil {
		if err := r.updateDetail(ctx, tx, *mutation.Update, userID, now); err != nil {
			return err
		}
	}
	if mutation.DeleteID != "" {
		tag, err := tx.Exec(ctx, "DELETE FROM transaction_details WHERE module = $1 AND detail_id = $2;", module, mutation.DeleteID)
		if err != nil {
			return fmt.Errorf("failed to delete detail %s: %w", mutation.DeleteID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
	}
	if mutation.BankRow != nil {
		if err := r.upsertBankRow(ctx, tx, *mutation.BankRow, userID, now); err != nil {
			return err
		}
	}

	t := tableFor(module)
	totalsQuery := fmt.Sprintf(`
		UPDATE %s SET sum_debit = $2, sum_credit = $3, is_balanced = $4, amount = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE transaction_id = $1;
	`, t.header)
	tag, err := tx.Exec(ctx, totalsQuery, transactionID,
		mutation.Totals.SumDebit, mutation.Totals.SumCredit, mutation.Totals.IsBalanced, mutation.Totals.Amount,
		now, userID)
	if err != nil {
		return fmt.Errorf("failed to update totals on %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) insertDetail(ctx context.Context, tx pgx.Tx, d domain.TransactionDetail) error {
	query := `
		INSERT INTO transaction_details (detail_id, module, transaction_id, acct_code, debit, credit, workstation_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	if _, err := tx.Exec(ctx, query, d.DetailID, d.Module, d.TransactionID, d.AcctCode, d.Debit, d.Credit,
		d.WorkstationID, d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy); err != nil {
		return fmt.Errorf("failed to insert detail %s: %w", d.DetailID, err)
	}
	return nil
}

func (r *PgxLedgerRepository) updateDetail(ctx context.Context, tx pgx.Tx, d domain.TransactionDetail, userID string, now time.Time) error {
	query := `
		UPDATE transaction_details SET acct_code = $3, debit = $4, credit = $5, last_updated_at = $6, last_updated_by = $7
		WHERE module = $1 AND detail_id = $2;
	`
	tag, err := tx.Exec(ctx, query, d.Module, d.DetailID, d.AcctCode, d.Debit, d.Credit, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update detail %s: %w", d.DetailID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxLedgerRepository) upsertBankRow(ctx context.Context, tx pgx.Tx, d domain.TransactionDetail, userID string, now time.Time) error {
	query := `
		INSERT INTO transaction_details (detail_id, module, transaction_id, acct_code, debit, credit, workstation_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (detail_id) DO UPDATE
		SET acct_code = EXCLUDED.acct_code, debit = EXCLUDED.debit, credit = EXCLUDED.credit,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := tx.Exec(ctx, query, d.DetailID, d.Module, d.TransactionID, d.AcctCode, d.Debit, d.Credit,
		d.WorkstationID, d.CreatedAt, d.CreatedBy, now, userID); err != nil {
		return fmt.Errorf("failed to upsert bank row %s: %w", d.DetailID, err)
	}
	return nil
}

// scanHeader reads one header row regardless of which cancel encoding the
// module's table uses.
func (r *PgxLedgerRepository) scanHeader(module domain.ModuleType, row pgx.Row) (*domain.TransactionHeader, error) {
	var h domain.TransactionHeader
	var flags domain.LegacyCancelFlags
	err := row.Scan(
		&h.TransactionID, &h.DocNo, &h.Date, &h.CounterpartyID, &h.BankID, &h.Explanation, &h.CompanyID,
		&flags.Flag, &flags.IsCancel, &flags.IsDeleted,
		&h.SumDebit, &h.SumCredit, &h.IsBalanced, &h.Amount,
		&h.CreatedAt, &h.CreatedBy, &h.LastUpdatedAt, &h.LastUpdatedBy)
	if err != nil {
		return nil, err
	}
	h.Module = module
	state, err := domain.CodecFor(module).Decode(flags)
	if err != nil {
		return nil, fmt.Errorf("header %s: %w", h.TransactionID, err)
	}
	h.Cancel = state
	return &h, nil
}
