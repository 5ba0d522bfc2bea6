package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for project transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a project transaction regardless of its archive state.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// TransactionWriter defines write operations for project transactions
type TransactionWriter interface {
	// SaveTransaction inserts a new project transaction.
	SaveTransaction(ctx context.Context, transaction domain.Transaction) error

	// FindTransactionByIDForUpdateInTx locks and returns a project transaction.
	FindTransactionByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// UpdateTransactionSoftDeleteInTx writes the soft-delete fields.
	UpdateTransactionSoftDeleteInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error

	// RecalculateCapitalCostInTx sets capital_cost to the sum of active linked expenses and returns it.
	// Returns apperrors.ErrNotFound when the transaction does not exist.
	RecalculateCapitalCostInTx(ctx context.Context, tx pgx.Tx, transactionID string, now time.Time) (decimal.Decimal, error)
}

// TransactionRepositoryFacade combines all project-transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
