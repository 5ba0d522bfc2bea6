package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/backoffice_ledger/internal/models"
	"github.com/SscSPs/backoffice_ledger/internal/utils/mapping"
	"github.com/SscSPs/backoffice_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const fundBalanceColumns = `fund_type, current_balance, last_reconciled_balance, last_reconciled_at, updated_at`

const fundTransactionColumns = `id, fund_type, transaction_type, amount, balance_after, description, source_type, source_id, reference_id, correlation_id, created_by_id, created_at`

type PgxFundRepository struct {
	BaseRepository
}

// newPgxFundRepository creates a new repository for fund balances and their audit trail.
func newPgxFundRepository(pool *pgxpool.Pool) portsrepo.FundRepositoryWithTx {
	return &PgxFundRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.FundRepositoryWithTx = (*PgxFundRepository)(nil)

func scanFundBalance(row pgx.Row) (models.FundBalance, error) {
	var m models.FundBalance
	err := row.Scan(&m.FundType, &m.CurrentBalance, &m.LastReconciledBalance, &m.LastReconciledAt, &m.UpdatedAt)
	return m, err
}

func scanFundTransaction(row pgx.Row) (models.FundTransaction, error) {
	var m models.FundTransaction
	err := row.Scan(
		&m.FundTransactionID,
		&m.FundType,
		&m.TransactionType,
		&m.Amount,
		&m.BalanceAfter,
		&m.Description,
		&m.SourceType,
		&m.SourceID,
		&m.ReferenceID,
		&m.CorrelationID,
		&m.CreatedByID,
		&m.CreatedAt,
	)
	return m, err
}

func fundTypeStrings(fundTypes []domain.FundType) []string {
	out := make([]string, len(fundTypes))
	for i, ft := range fundTypes {
		out[i] = string(ft)
	}
	return out
}

// ListFundBalances returns every fund balance row ordered by fund type.
func (r *PgxFundRepository) ListFundBalances(ctx context.Context) ([]domain.FundBalance, error) {
	query := `SELECT ` + fundBalanceColumns + ` FROM fund_balances ORDER BY fund_type;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund balances: %w", err)
	}
	balances, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FundBalance, error) {
		return scanFundBalance(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan fund balances: %w", err)
	}
	return mapping.ToDomainFundBalanceSlice(balances), nil
}

// FindFundBalance returns a single fund balance.
func (r *PgxFundRepository) FindFundBalance(ctx context.Context, fundType domain.FundType) (*domain.FundBalance, error) {
	query := `SELECT ` + fundBalanceColumns + ` FROM fund_balances WHERE fund_type = $1;`

	m, err := scanFundBalance(r.Pool.QueryRow(ctx, query, string(fundType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fund balance %s: %w", fundType, err)
	}
	balance := mapping.ToDomainFundBalance(m)
	return &balance, nil
}

// FindFundTransactionByID returns a single audit record.
func (r *PgxFundRepository) FindFundTransactionByID(ctx context.Context, fundTransactionID string) (*domain.FundTransaction, error) {
	query := `SELECT ` + fundTransactionColumns + ` FROM fund_transactions WHERE id = $1;`

	m, err := scanFundTransaction(r.Pool.QueryRow(ctx, query, fundTransactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fund transaction %s: %w", fundTransactionID, err)
	}
	record := mapping.ToDomainFundTransaction(m)
	return &record, nil
}

// ListFundTransactions returns audit records newest first.
// The token is a keyset cursor over (created_at, id) so concurrent inserts never shift a page.
func (r *PgxFundRepository) ListFundTransactions(ctx context.Context, filter portsrepo.FundTransactionFilter, limit int, nextToken *string) ([]domain.FundTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1 // Fetch one extra to detect another page

	var conditions []string
	var args []any
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.FundType != nil {
		addCondition("fund_type = $%d", string(*filter.FundType))
	}
	if filter.SourceType != nil {
		addCondition("source_type = $%d", *filter.SourceType)
	}
	if filter.SourceID != nil {
		addCondition("source_id = $%d", *filter.SourceID)
	}
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		args = append(args, createdAt, id)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + fundTransactionColumns + ` FROM fund_transactions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, fetchLimit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query fund transactions: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FundTransaction, error) {
		return scanFundTransaction(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan fund transactions: %w", err)
	}

	var newNextToken *string
	if len(records) > limit {
		last := records[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.FundTransactionID)
		newNextToken = &token
		records = records[:limit]
	}
	return mapping.ToDomainFundTransactionSlice(records), newNextToken, nil
}

// SumFundTransactionsAfter sums amounts recorded for a fund strictly after the given instant.
func (r *PgxFundRepository) SumFundTransactionsAfter(ctx context.Context, fundType domain.FundType, after *time.Time) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM fund_transactions
		WHERE fund_type = $1 AND ($2::timestamptz IS NULL OR created_at > $2);
	`
	var sum decimal.Decimal
	var count int
	if err := r.Pool.QueryRow(ctx, query, string(fundType), after).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum fund transactions for %s: %w", fundType, err)
	}
	return sum, count, nil
}

// SeedFundBalances inserts zero balances for any missing fund types.
func (r *PgxFundRepository) SeedFundBalances(ctx context.Context, fundTypes []domain.FundType, now time.Time) error {
	if len(fundTypes) == 0 {
		return nil
	}
	query := `
		INSERT INTO fund_balances (fund_type, current_balance, last_reconciled_balance, updated_at)
		SELECT ft, 0, 0, $2 FROM unnest($1::text[]) AS ft
		ON CONFLICT (fund_type) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, fundTypeStrings(fundTypes), now); err != nil {
		return fmt.Errorf("failed to seed fund balances: %w", err)
	}
	return nil
}

// LockFundBalancesInTx selects the given funds FOR UPDATE in ascending fund type order.
func (r *PgxFundRepository) LockFundBalancesInTx(ctx context.Context, tx pgx.Tx, fundTypes []domain.FundType) (map[domain.FundType]domain.FundBalance, error) {
	if len(fundTypes) == 0 {
		return map[domain.FundType]domain.FundBalance{}, nil
	}
	query := `SELECT ` + fundBalanceColumns + `
		FROM fund_balances
		WHERE fund_type = ANY($1)
		ORDER BY fund_type
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, fundTypeStrings(fundTypes))
	if err != nil {
		return nil, fmt.Errorf("failed to lock fund balances: %w", err)
	}
	locked, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FundBalance, error) {
		return scanFundBalance(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked fund balances: %w", err)
	}

	balances := make(map[domain.FundType]domain.FundBalance, len(locked))
	for _, m := range locked {
		balances[domain.FundType(m.FundType)] = mapping.ToDomainFundBalance(m)
	}
	for _, ft := range fundTypes {
		if _, ok := balances[ft]; !ok {
			return nil, fmt.Errorf("%w: fund balance %s", apperrors.ErrNotFound, ft)
		}
	}
	return balances, nil
}

// UpdateFundBalanceInTx writes the balance and reconciliation fields of a locked fund.
func (r *PgxFundRepository) UpdateFundBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.FundBalance) error {
	m := mapping.ToModelFundBalance(balance)
	query := `
		UPDATE fund_balances
		SET current_balance = $2, last_reconciled_balance = $3, last_reconciled_at = $4, updated_at = $5
		WHERE fund_type = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, m.FundType, m.CurrentBalance, m.LastReconciledBalance, m.LastReconciledAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update fund balance %s: %w", m.FundType, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fund balance %s", apperrors.ErrNotFound, m.FundType)
	}
	return nil
}

// InsertFundTransactionInTx appends an audit record.
func (r *PgxFundRepository) InsertFundTransactionInTx(ctx context.Context, tx pgx.Tx, record domain.FundTransaction) error {
	m := mapping.ToModelFundTransaction(record)
	query := `INSERT INTO fund_transactions (` + fundTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.FundTransactionID,
		m.FundType,
		m.TransactionType,
		m.Amount,
		m.BalanceAfter,
		m.Description,
		m.SourceType,
		m.SourceID,
		m.ReferenceID,
		m.CorrelationID,
		m.CreatedByID,
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fund transaction already recorded for %s", apperrors.ErrDuplicate, m.FundTransactionID)
		}
		return fmt.Errorf("failed to insert fund transaction %s: %w", m.FundTransactionID, err)
	}
	return nil
}

// SetFundTransactionReferenceInTx back-links a transfer leg to its pair.
func (r *PgxFundRepository) SetFundTransactionReferenceInTx(ctx context.Context, tx pgx.Tx, fundTransactionID string, referenceID string) error {
	query := `UPDATE fund_transactions SET reference_id = $2 WHERE id = $1;`
	cmdTag, err := tx.Exec(ctx, query, fundTransactionID, referenceID)
	if err != nil {
		return fmt.Errorf("failed to link fund transaction %s: %w", fundTransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fund transaction %s", apperrors.ErrNotFound, fundTransactionID)
	}
	return nil
}

// FundTransactionExistsInTx reports whether a record with the given origin marker was already written.
func (r *PgxFundRepository) FundTransactionExistsInTx(ctx context.Context, tx pgx.Tx, sourceType string, sourceID string, correlationID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM fund_transactions
			WHERE source_type = $1 AND source_id = $2 AND correlation_id = $3
		);
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, sourceType, sourceID, correlationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check fund transaction marker: %w", err)
	}
	return exists, nil
}
