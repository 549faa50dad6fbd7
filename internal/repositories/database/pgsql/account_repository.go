package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agridane/erp_backend/internal/apperrors"
	"github.com/agridane/erp_backend/internal/core/domain"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

const accountColumns = "account_id, company_id, code, description, category, is_active, bank_id, created_at, created_by, last_updated_at, last_updated_by"

type PgxAccountRepository struct {
	BaseRepository
}

// NewPgxAccountRepository creates the read-only GL account repository.
func NewPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) FindByCode(ctx context.Context, companyID string, code string) (*domain.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE company_id = $1 AND code = $2;", accountColumns)
	return r.scanAccount(r.Pool.QueryRow(ctx, query, companyID, code))
}

func (r *PgxAccountRepository) FindBankAccount(ctx context.Context, companyID string, bankID string) (*domain.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE company_id = $1 AND bank_id = $2;", accountColumns)
	return r.scanAccount(r.Pool.QueryRow(ctx, query, companyID, bankID))
}

func (r *PgxAccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.AccountID, &a.CompanyID, &a.Code, &a.Description, &a.Category, &a.IsActive, &a.BankID,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}
