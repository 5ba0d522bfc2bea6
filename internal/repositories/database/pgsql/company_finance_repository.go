package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/backoffice_ledger/internal/models"
	"github.com/SscSPs/backoffice_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// singletonCompanyFinanceID is the id seeded by the initial migration.
const singletonCompanyFinanceID = "default"

type PgxCompanyFinanceRepository struct {
	pool *pgxpool.Pool
}

// newPgxCompanyFinanceRepository creates a new repository for the company finance row.
func newPgxCompanyFinanceRepository(pool *pgxpool.Pool) portsrepo.CompanyFinanceRepositoryFacade {
	return &PgxCompanyFinanceRepository{pool: pool}
}

var _ portsrepo.CompanyFinanceRepositoryFacade = (*PgxCompanyFinanceRepository)(nil)

// FindCompanyFinance returns the singleton row.
func (r *PgxCompanyFinanceRepository) FindCompanyFinance(ctx context.Context) (*domain.CompanyFinance, error) {
	query := `SELECT id, total_funds, updated_at FROM company_finances WHERE id = $1;`

	var m models.CompanyFinance
	err := r.pool.QueryRow(ctx, query, singletonCompanyFinanceID).Scan(&m.CompanyFinanceID, &m.TotalFunds, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company finance: %w", err)
	}
	finance := mapping.ToDomainCompanyFinance(m)
	return &finance, nil
}

// AdjustTotalFundsInTx adds delta to total_funds in a single statement and returns the updated row.
func (r *PgxCompanyFinanceRepository) AdjustTotalFundsInTx(ctx context.Context, tx pgx.Tx, companyFinanceID string, delta decimal.Decimal, now time.Time) (*domain.CompanyFinance, error) {
	if companyFinanceID == "" {
		companyFinanceID = singletonCompanyFinanceID
	}
	query := `
		UPDATE company_finances
		SET total_funds = total_funds + $2, updated_at = $3
		WHERE id = $1
		RETURNING id, total_funds, updated_at;
	`
	var m models.CompanyFinance
	err := tx.QueryRow(ctx, query, companyFinanceID, delta, now).Scan(&m.CompanyFinanceID, &m.TotalFunds, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company finance %s", apperrors.ErrNotFound, companyFinanceID)
		}
		return nil, fmt.Errorf("failed to adjust company finance %s: %w", companyFinanceID, err)
	}
	finance := mapping.ToDomainCompanyFinance(m)
	return &finance, nil
}
