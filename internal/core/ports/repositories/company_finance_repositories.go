package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CompanyFinanceRepositoryFacade defines access to the singleton company finance row.
type CompanyFinanceRepositoryFacade interface {
	// FindCompanyFinance returns the singleton row.
	FindCompanyFinance(ctx context.Context) (*domain.CompanyFinance, error)

	// AdjustTotalFundsInTx adds delta to total_funds and returns the updated row.
	// An empty companyFinanceID targets the singleton row.
	AdjustTotalFundsInTx(ctx context.Context, tx pgx.Tx, companyFinanceID string, delta decimal.Decimal, now time.Time) (*domain.CompanyFinance, error)
}
