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

const transactionColumns = `id, name, client_id, vendor_id, capital_cost,
	is_deleted, deleted_at, deleted_by_id, deletion_batch_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for project transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Name,
		&m.ClientID,
		&m.VendorID,
		&m.CapitalCost,
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

// FindTransactionByID retrieves a project transaction regardless of its archive state.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	t := mapping.ToDomainTransaction(m)
	return &t, nil
}

// SaveTransaction inserts a new project transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.Name,
		m.ClientID,
		m.VendorID,
		m.CapitalCost,
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
			return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByIDForUpdateInTx locks and returns a project transaction.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE;`

	m, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	t := mapping.ToDomainTransaction(m)
	return &t, nil
}

// UpdateTransactionSoftDeleteInTx writes the soft-delete fields.
func (r *PgxTransactionRepository) UpdateTransactionSoftDeleteInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `
		UPDATE transactions
		SET is_deleted = $2, deleted_at = $3, deleted_by_id = $4, deletion_batch_id = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.IsDeleted,
		m.DeletedAt,
		m.DeletedByID,
		m.DeletionBatchID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecalculateCapitalCostInTx sets capital_cost to the sum of active linked expenses and returns it.
// Running it twice without intervening changes yields the same value.
func (r *PgxTransactionRepository) RecalculateCapitalCostInTx(ctx context.Context, tx pgx.Tx, transactionID string, now time.Time) (decimal.Decimal, error) {
	query := `
		UPDATE transactions
		SET capital_cost = (
				SELECT COALESCE(SUM(amount), 0)
				FROM expenses
				WHERE transaction_id = $1 AND is_deleted = FALSE
			),
			last_updated_at = $2
		WHERE id = $1
		RETURNING capital_cost;
	`
	var capitalCost decimal.Decimal
	if err := tx.QueryRow(ctx, query, transactionID, now).Scan(&capitalCost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return decimal.Zero, fmt.Errorf("failed to recalculate capital cost of %s: %w", transactionID, err)
	}
	return capitalCost, nil
}
