package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// FundTransactionFilter narrows a fund transaction listing. Zero values mean "any".
type FundTransactionFilter struct {
	FundType   *domain.FundType
	SourceType *string
	SourceID   *string
}

// FundReader defines read operations for fund balances and their audit trail
type FundReader interface {
	// ListFundBalances returns every fund balance row ordered by fund type.
	ListFundBalances(ctx context.Context) ([]domain.FundBalance, error)

	// FindFundBalance returns a single fund balance.
	FindFundBalance(ctx context.Context, fundType domain.FundType) (*domain.FundBalance, error)

	// FindFundTransactionByID returns a single audit record.
	FindFundTransactionByID(ctx context.Context, fundTransactionID string) (*domain.FundTransaction, error)

	// ListFundTransactions returns audit records newest first using token-based pagination.
	ListFundTransactions(ctx context.Context, filter FundTransactionFilter, limit int, nextToken *string) ([]domain.FundTransaction, *string, error)

	// SumFundTransactionsAfter sums amounts recorded for a fund strictly after the given instant.
	// A nil instant sums the whole trail. It also returns the number of records summed.
	SumFundTransactionsAfter(ctx context.Context, fundType domain.FundType, after *time.Time) (decimal.Decimal, int, error)
}

// FundWriter defines write operations. Everything except seeding joins a caller's transaction.
type FundWriter interface {
	// SeedFundBalances inserts zero balances for any missing fund types. Safe to call repeatedly.
	SeedFundBalances(ctx context.Context, fundTypes []domain.FundType, now time.Time) error

	// LockFundBalancesInTx selects the given funds FOR UPDATE in ascending fund type order.
	// Returns apperrors.ErrNotFound when any requested fund row is missing.
	LockFundBalancesInTx(ctx context.Context, tx pgx.Tx, fundTypes []domain.FundType) (map[domain.FundType]domain.FundBalance, error)

	// UpdateFundBalanceInTx writes the balance and reconciliation fields of a locked fund.
	UpdateFundBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.FundBalance) error

	// InsertFundTransactionInTx appends an audit record.
	InsertFundTransactionInTx(ctx context.Context, tx pgx.Tx, record domain.FundTransaction) error

	// SetFundTransactionReferenceInTx back-links a transfer leg to its pair.
	SetFundTransactionReferenceInTx(ctx context.Context, tx pgx.Tx, fundTransactionID string, referenceID string) error

	// FundTransactionExistsInTx reports whether a record with the given origin marker was already written.
	FundTransactionExistsInTx(ctx context.Context, tx pgx.Tx, sourceType string, sourceID string, correlationID string) (bool, error)
}

// FundRepositoryFacade combines all fund-related repository interfaces
type FundRepositoryFacade interface {
	FundReader
	FundWriter
}

// FundRepositoryWithTx extends FundRepositoryFacade with transaction capabilities
type FundRepositoryWithTx interface {
	FundRepositoryFacade
	TransactionManager
}
