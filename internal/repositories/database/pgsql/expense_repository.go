package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/backoffice_ledger/internal/models"
	"github.com/SscSPs/backoffice_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `id, amount, fund_type, description, transaction_id, inventory_id, vendor_id, expense_date,
	is_deleted, deleted_at, deleted_by_id, deletion_batch_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.Amount,
		&m.FundType,
		&m.Description,
		&m.TransactionID,
		&m.InventoryID,
		&m.VendorID,
		&m.ExpenseDate,
		&m.IsDeleted,
		&m.DeletedAt,
		&m.DeletedByID,
		&m.DeletionBatchID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainExpenseSlice(expenses), nil
}

// FindExpenseByID retrieves an expense regardless of its archive state.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1;`

	m, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	expense := mapping.ToDomainExpense(m)
	return &expense, nil
}

// ListExpenses retrieves a page of expenses, newest first.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter portsrepo.ExpenseFilter, limit int, offset int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []any
	if !filter.IncludeArchived {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if filter.TransactionID != nil {
		args = append(args, *filter.TransactionID)
		conditions = append(conditions, fmt.Sprintf("transaction_id = $%d", len(args)))
	}
	if filter.FundType != nil {
		args = append(args, string(*filter.FundType))
		conditions = append(conditions, fmt.Sprintf("fund_type = $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY expense_date DESC, created_at DESC, id DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	return expenses, nil
}

// FindExpenseByIDForUpdateInTx locks and returns an expense.
func (r *PgxExpenseRepository) FindExpenseByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE;`

	m, err := scanExpense(tx.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock expense %s: %w", expenseID, err)
	}
	expense := mapping.ToDomainExpense(m)
	return &expense, nil
}

// SaveExpenseInTx inserts a new expense.
func (r *PgxExpenseRepository) SaveExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, query,
		m.ExpenseID,
		m.Amount,
		m.FundType,
		m.Description,
		m.TransactionID,
		m.InventoryID,
		m.VendorID,
		m.ExpenseDate,
		m.IsDeleted,
		m.DeletedAt,
		m.DeletedByID,
		m.DeletionBatchID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: expense with ID %s already exists", apperrors.ErrDuplicate, m.ExpenseID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: expense %s violates a column constraint", apperrors.ErrValidation, m.ExpenseID)
		}
		return fmt.Errorf("failed to save expense %s: %w", m.ExpenseID, err)
	}
	return nil
}

// UpdateExpenseInTx writes amount, description and soft-delete fields.
func (r *PgxExpenseRepository) UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET amount = $2, description = $3,
			is_deleted = $4, deleted_at = $5, deleted_by_id = $6, deletion_batch_id = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ExpenseID,
		m.Amount,
		m.Description,
		m.IsDeleted,
		m.DeletedAt,
		m.DeletedByID,
		m.DeletionBatchID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: expense %s violates a column constraint", apperrors.ErrValidation, m.ExpenseID)
		}
		return fmt.Errorf("failed to update expense %s: %w", m.ExpenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListActiveExpensesByTransactionForUpdateInTx locks every active expense linked to a project.
func (r *PgxExpenseRepository) ListActiveExpensesByTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE transaction_id = $1 AND is_deleted = FALSE
		ORDER BY id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock expenses of transaction %s: %w", transactionID, err)
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses of transaction %s: %w", transactionID, err)
	}
	return expenses, nil
}

// ListExpensesByDeletionBatchForUpdateInTx locks every archived expense of a project stamped with batchID.
func (r *PgxExpenseRepository) ListExpensesByDeletionBatchForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string, batchID string) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE transaction_id = $1 AND is_deleted = TRUE AND deletion_batch_id = $2
		ORDER BY id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, transactionID, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock expenses of batch %s: %w", batchID, err)
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses of batch %s: %w", batchID, err)
	}
	return expenses, nil
}
