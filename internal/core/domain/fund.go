package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundType names one of the two cash pools tracked by the ledger.
type FundType string

const (
	PettyCash  FundType = "petty_cash"
	ProfitBank FundType = "profit_bank"
)

// AllFundTypes lists the recognised fund types in lock order.
var AllFundTypes = []FundType{PettyCash, ProfitBank}

// IsValid reports whether f is a recognised fund type.
func (f FundType) IsValid() bool {
	switch f {
	case PettyCash, ProfitBank:
		return true
	}
	return false
}

// FundTransactionType classifies an audit record.
type FundTransactionType string

const (
	Adjustment  FundTransactionType = "adjustment"
	TransferOut FundTransactionType = "transfer_out"
	TransferIn  FundTransactionType = "transfer_in"
)

// Source types recorded on fund transactions that originate from other entities.
const (
	SourceReconcile      = "reconcile"
	SourceTransfer       = "transfer"
	SourceExpense        = "expense"
	SourceExpenseArchive = "expense_archive"
	SourceExpenseRestore = "expense_restore"
	SourceExpenseEdit    = "expense_edit"
)

// FundBalance is the current balance of a single fund. One row per fund type, never deleted.
type FundBalance struct {
	FundType              FundType        `json:"fundType"`
	CurrentBalance        decimal.Decimal `json:"currentBalance"`
	LastReconciledBalance decimal.Decimal `json:"lastReconciledBalance"`
	LastReconciledAt      *time.Time      `json:"lastReconciledAt,omitempty"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// FundTransaction is an append-only audit record explaining one balance change.
type FundTransaction struct {
	FundTransactionID string              `json:"id"`
	FundType          FundType            `json:"fundType"`
	TransactionType   FundTransactionType `json:"transactionType"`
	Amount            decimal.Decimal     `json:"amount"` // Signed
	BalanceAfter      decimal.Decimal     `json:"balanceAfter"`
	Description       string              `json:"description"`
	SourceType        *string             `json:"sourceType,omitempty"`
	SourceID          *string             `json:"sourceId,omitempty"`
	ReferenceID       *string             `json:"referenceId,omitempty"` // Paired transfer leg
	CorrelationID     *string             `json:"correlationId,omitempty"`
	CreatedByID       string              `json:"createdById"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// TransferPair holds both legs of a fund-to-fund transfer.
type TransferPair struct {
	Out FundTransaction `json:"out"`
	In  FundTransaction `json:"in"`
}

// IsLinked reports whether the legs reference each other and carry opposite amounts.
func (p TransferPair) IsLinked() bool {
	if p.Out.TransactionType != TransferOut || p.In.TransactionType != TransferIn {
		return false
	}
	if p.Out.ReferenceID == nil || p.In.ReferenceID == nil {
		return false
	}
	if *p.Out.ReferenceID != p.In.FundTransactionID || *p.In.ReferenceID != p.Out.FundTransactionID {
		return false
	}
	return p.Out.Amount.Equal(p.In.Amount.Neg())
}

// FundIntegrity compares a fund's stored balance with the balance implied by its audit trail.
type FundIntegrity struct {
	FundType        FundType        `json:"fundType"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	Drift           decimal.Decimal `json:"drift"`
	RecordsChecked  int             `json:"recordsChecked"`
}

// Consistent reports whether the fund has no drift.
func (i FundIntegrity) Consistent() bool {
	return i.Drift.IsZero()
}

// MoneyScale is the number of decimal places stored for every amount and balance.
const MoneyScale = 2

// IsMoneyScale reports whether d carries no digits below MoneyScale, so storing it loses nothing.
func IsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
