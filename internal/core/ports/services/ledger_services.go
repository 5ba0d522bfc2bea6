package services

import (
	"context"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over fund balances and their audit trail
type LedgerReaderSvc interface {
	// GetFundBalances returns the balance of every fund, seeding missing rows first.
	GetFundBalances(ctx context.Context) ([]domain.FundBalance, error)

	// ListFundTransactions returns a page of audit records, newest first.
	ListFundTransactions(ctx context.Context, params dto.ListFundTransactionsParams) ([]domain.FundTransaction, *string, error)

	// GetTransferPair returns both legs of the transfer that fundTransactionID belongs to.
	GetTransferPair(ctx context.Context, fundTransactionID string) (*domain.TransferPair, error)

	// VerifyFundIntegrity compares a fund's balance with the balance implied by its trail.
	VerifyFundIntegrity(ctx context.Context, fundType domain.FundType) (*domain.FundIntegrity, error)
}

// LedgerWriterSvc defines ledger mutations that run in their own database transaction
type LedgerWriterSvc interface {
	// EnsureFundBalances seeds a zero balance for every missing fund. Idempotent.
	EnsureFundBalances(ctx context.Context) error

	// Reconcile sets a fund to an observed balance and records the adjustment.
	Reconcile(ctx context.Context, fundType domain.FundType, actualBalance decimal.Decimal, description string, userID string) (*domain.FundBalance, *domain.FundTransaction, error)

	// Transfer moves a positive amount between two distinct funds.
	Transfer(ctx context.Context, from domain.FundType, to domain.FundType, amount decimal.Decimal, description string, userID string) (*domain.TransferPair, error)

	// ReverseExpenseImpact credits an archived expense's amount back to its fund.
	ReverseExpenseImpact(ctx context.Context, expense domain.Expense, userID string) (*domain.FundTransaction, error)

	// ApplyExpenseImpact debits an expense's amount from its fund.
	ApplyExpenseImpact(ctx context.Context, expense domain.Expense, sourceType string, correlationID *string, userID string) (*domain.FundTransaction, error)

	// AdjustFundForExpenseEdit credits a fund by delta after an expense amount edit.
	AdjustFundForExpenseEdit(ctx context.Context, expense domain.Expense, delta decimal.Decimal, correlationID string, userID string) (*domain.FundTransaction, error)

	// RecalculateCapitalCost recomputes a project's capital cost from its active expenses.
	RecalculateCapitalCost(ctx context.Context, transactionID string) (decimal.Decimal, error)

	// ApplyExpenseAmountDelta adds delta to the company's total funds.
	ApplyExpenseAmountDelta(ctx context.Context, companyFinanceID string, delta decimal.Decimal) (*domain.CompanyFinance, error)
}

// LedgerTxSvc defines the same mutations joined to a caller's transaction.
// Callers must call NotifyBalancesChanged once their transaction commits.
type LedgerTxSvc interface {
	ReverseExpenseImpactInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, userID string) (*domain.FundTransaction, error)
	ApplyExpenseImpactInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, sourceType string, correlationID *string, userID string) (*domain.FundTransaction, error)
	AdjustFundForExpenseEditInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, delta decimal.Decimal, correlationID string, userID string) (*domain.FundTransaction, error)
	RecalculateCapitalCostInTx(ctx context.Context, tx pgx.Tx, transactionID string) (decimal.Decimal, error)
	ApplyExpenseAmountDeltaInTx(ctx context.Context, tx pgx.Tx, companyFinanceID string, delta decimal.Decimal) (*domain.CompanyFinance, error)

	// NotifyBalancesChanged invalidates cached balances.
	NotifyBalancesChanged(ctx context.Context)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerTxSvc
}

// BalanceCache caches the fund balance listing.
type BalanceCache interface {
	// FetchBalances returns cached balances or calls load and caches its result.
	FetchBalances(ctx context.Context, load func(context.Context) ([]domain.FundBalance, error)) ([]domain.FundBalance, error)

	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context) error
}

// CompensationEnqueuer schedules a retry for a failed best-effort effect.
type CompensationEnqueuer interface {
	EnqueueCompensation(ctx context.Context, compensation domain.Compensation) error
}
