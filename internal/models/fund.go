package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundBalance is a row of fund_balances.
type FundBalance struct {
	FundType              string          `db:"fund_type"`
	CurrentBalance        decimal.Decimal `db:"current_balance"`
	LastReconciledBalance decimal.Decimal `db:"last_reconciled_balance"`
	LastReconciledAt      *time.Time      `db:"last_reconciled_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

// FundTransaction is a row of fund_transactions.
type FundTransaction struct {
	FundTransactionID string          `db:"id"`
	FundType          string          `db:"fund_type"`
	TransactionType   string          `db:"transaction_type"`
	Amount            decimal.Decimal `db:"amount"`
	BalanceAfter      decimal.Decimal `db:"balance_after"`
	Description       string          `db:"description"`
	SourceType        *string         `db:"source_type"`
	SourceID          *string         `db:"source_id"`
	ReferenceID       *string         `db:"reference_id"`
	CorrelationID     *string         `db:"correlation_id"`
	CreatedByID       string          `db:"created_by_id"`
	CreatedAt         time.Time       `db:"created_at"`
}
