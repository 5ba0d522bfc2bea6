package repositories

import (
	"context"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	TransactionID   *string
	FundType        *domain.FundType
	IncludeArchived bool
}

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense regardless of its archive state.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a page of expenses, newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter, limit int, offset int) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data. All of them join a caller's transaction.
type ExpenseWriter interface {
	// FindExpenseByIDForUpdateInTx locks and returns an expense.
	FindExpenseByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error)

	// SaveExpenseInTx inserts a new expense.
	SaveExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error

	// UpdateExpenseInTx writes amount, description and soft-delete fields.
	UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error

	// ListActiveExpensesByTransactionForUpdateInTx locks every active expense linked to a project.
	ListActiveExpensesByTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Expense, error)

	// ListExpensesByDeletionBatchForUpdateInTx locks every archived expense of a project stamped with batchID.
	ListExpensesByDeletionBatchForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string, batchID string) ([]domain.Expense, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
