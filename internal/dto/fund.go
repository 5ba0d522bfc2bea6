package dto

import (
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconcileFundRequest sets a fund to an observed balance.
type ReconcileFundRequest struct {
	FundType      domain.FundType  `json:"fundType" binding:"required,fundtype"`
	// A pointer so an omitted balance is rejected instead of reconciling to zero.
	ActualBalance *decimal.Decimal `json:"actualBalance" binding:"required"`
	Description   string           `json:"description" binding:"max=500"`
}

// TransferFundsRequest moves an amount between two funds.
type TransferFundsRequest struct {
	FromFundType domain.FundType `json:"fromFundType" binding:"required,fundtype"`
	ToFundType   domain.FundType `json:"toFundType" binding:"required,fundtype,nefield=FromFundType"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description" binding:"max=500"`
}

// ListFundTransactionsParams defines query parameters for the fund audit trail.
type ListFundTransactionsParams struct {
	FundType   *domain.FundType `form:"fundType" binding:"omitempty,fundtype"`
	SourceType *string          `form:"sourceType"`
	SourceID   *string          `form:"sourceID"`
	Limit      int              `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken  *string          `form:"nextToken"`
}

// FundBalanceResponse mirrors domain.FundBalance.
type FundBalanceResponse struct {
	FundType              domain.FundType `json:"fundType"`
	CurrentBalance        decimal.Decimal `json:"currentBalance"`
	LastReconciledBalance decimal.Decimal `json:"lastReconciledBalance"`
	LastReconciledAt      *time.Time      `json:"lastReconciledAt,omitempty"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// FundTransactionResponse mirrors domain.FundTransaction.
type FundTransactionResponse struct {
	FundTransactionID string                     `json:"fundTransactionID"`
	FundType          domain.FundType            `json:"fundType"`
	TransactionType   domain.FundTransactionType `json:"transactionType"`
	Amount            decimal.Decimal            `json:"amount"`
	BalanceAfter      decimal.Decimal            `json:"balanceAfter"`
	Description       string                     `json:"description"`
	SourceType        *string                    `json:"sourceType,omitempty"`
	SourceID          *string                    `json:"sourceID,omitempty"`
	ReferenceID       *string                    `json:"referenceID,omitempty"`
	CreatedByID       string                     `json:"createdByID"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// ListFundTransactionsResponse wraps a page of audit records.
type ListFundTransactionsResponse struct {
	FundTransactions []FundTransactionResponse `json:"fundTransactions"`
	NextToken        *string                   `json:"nextToken,omitempty"`
}

// ReconcileFundResponse carries the updated balance and the adjustment it produced.
type ReconcileFundResponse struct {
	Balance    FundBalanceResponse     `json:"balance"`
	Adjustment FundTransactionResponse `json:"adjustment"`
}

// TransferPairResponse carries both legs of a transfer.
type TransferPairResponse struct {
	Out FundTransactionResponse `json:"out"`
	In  FundTransactionResponse `json:"in"`
}

// FundIntegrityResponse reports whether a fund's balance agrees with its trail.
type FundIntegrityResponse struct {
	FundType        domain.FundType `json:"fundType"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	Drift           decimal.Decimal `json:"drift"`
	RecordsChecked  int             `json:"recordsChecked"`
	Consistent      bool            `json:"consistent"`
}

// ToFundBalanceResponse converts a domain.FundBalance.
func ToFundBalanceResponse(b *domain.FundBalance) FundBalanceResponse {
	return FundBalanceResponse{
		FundType:              b.FundType,
		CurrentBalance:        b.CurrentBalance,
		LastReconciledBalance: b.LastReconciledBalance,
		LastReconciledAt:      b.LastReconciledAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

// ToListFundBalanceResponse converts a slice of domain.FundBalance.
func ToListFundBalanceResponse(balances []domain.FundBalance) []FundBalanceResponse {
	res := make([]FundBalanceResponse, len(balances))
	for i := range balances {
		res[i] = ToFundBalanceResponse(&balances[i])
	}
	return res
}

// ToFundTransactionResponse converts a domain.FundTransaction.
func ToFundTransactionResponse(ft *domain.FundTransaction) FundTransactionResponse {
	return FundTransactionResponse{
		FundTransactionID: ft.FundTransactionID,
		FundType:          ft.FundType,
		TransactionType:   ft.TransactionType,
		Amount:            ft.Amount,
		BalanceAfter:      ft.BalanceAfter,
		Description:       ft.Description,
		SourceType:        ft.SourceType,
		SourceID:          ft.SourceID,
		ReferenceID:       ft.ReferenceID,
		CreatedByID:       ft.CreatedByID,
		CreatedAt:         ft.CreatedAt,
	}
}

// ToListFundTransactionsResponse converts a page of audit records.
func ToListFundTransactionsResponse(records []domain.FundTransaction, nextToken *string) ListFundTransactionsResponse {
	res := make([]FundTransactionResponse, len(records))
	for i := range records {
		res[i] = ToFundTransactionResponse(&records[i])
	}
	return ListFundTransactionsResponse{FundTransactions: res, NextToken: nextToken}
}

// ToTransferPairResponse converts a domain.TransferPair.
func ToTransferPairResponse(p *domain.TransferPair) TransferPairResponse {
	return TransferPairResponse{
		Out: ToFundTransactionResponse(&p.Out),
		In:  ToFundTransactionResponse(&p.In),
	}
}

// ToFundIntegrityResponse converts a domain.FundIntegrity.
func ToFundIntegrityResponse(r *domain.FundIntegrity) FundIntegrityResponse {
	return FundIntegrityResponse{
		FundType:        r.FundType,
		CurrentBalance:  r.CurrentBalance,
		ExpectedBalance: r.ExpectedBalance,
		Drift:           r.Drift,
		RecordsChecked:  r.RecordsChecked,
		Consistent:      r.Consistent(),
	}
}
