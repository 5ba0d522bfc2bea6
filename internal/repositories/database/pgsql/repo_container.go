package pgsql

import (
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	fundRepo := newPgxFundRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	companyFinanceRepo := newPgxCompanyFinanceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		FundRepo:           fundRepo,
		ExpenseRepo:        expenseRepo,
		TransactionRepo:    transactionRepo,
		CompanyFinanceRepo: companyFinanceRepo,
	}
}
