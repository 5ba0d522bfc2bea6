package services

import (
	"context"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines the expense lifecycle. Each operation keeps fund balances and capital cost in step.
type ExpenseWriterSvc interface {
	// CreateExpense records an expense and debits its fund.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error)

	// UpdateExpense edits an active expense. Amount changes adjust the fund and company totals.
	UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, userID string) (*domain.Expense, error)

	// ArchiveExpense soft-deletes an expense and credits its fund back.
	ArchiveExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error)

	// RestoreExpense undoes ArchiveExpense.
	RestoreExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
