package mapping

import (
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/models"
)

// ToModelFundBalance converts a domain.FundBalance to its row form
func ToModelFundBalance(d domain.FundBalance) models.FundBalance {
	return models.FundBalance{
		FundType:              string(d.FundType),
		CurrentBalance:        d.CurrentBalance,
		LastReconciledBalance: d.LastReconciledBalance,
		LastReconciledAt:      d.LastReconciledAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

// ToDomainFundBalance converts a fund_balances row to a domain.FundBalance
func ToDomainFundBalance(m models.FundBalance) domain.FundBalance {
	return domain.FundBalance{
		FundType:              domain.FundType(m.FundType),
		CurrentBalance:        m.CurrentBalance,
		LastReconciledBalance: m.LastReconciledBalance,
		LastReconciledAt:      m.LastReconciledAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// ToDomainFundBalanceSlice converts fund_balances rows to domain values
func ToDomainFundBalanceSlice(ms []models.FundBalance) []domain.FundBalance {
	ds := make([]domain.FundBalance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFundBalance(m)
	}
	return ds
}

// ToModelFundTransaction converts a domain.FundTransaction to its row form
func ToModelFundTransaction(d domain.FundTransaction) models.FundTransaction {
	return models.FundTransaction{
		FundTransactionID: d.FundTransactionID,
		FundType:          string(d.FundType),
		TransactionType:   string(d.TransactionType),
		Amount:            d.Amount,
		BalanceAfter:      d.BalanceAfter,
		Description:       d.Description,
		SourceType:        d.SourceType,
		SourceID:          d.SourceID,
		ReferenceID:       d.ReferenceID,
		CorrelationID:     d.CorrelationID,
		CreatedByID:       d.CreatedByID,
		CreatedAt:         d.CreatedAt,
	}
}

// ToDomainFundTransaction converts a fund_transactions row to a domain.FundTransaction
func ToDomainFundTransaction(m models.FundTransaction) domain.FundTransaction {
	return domain.FundTransaction{
		FundTransactionID: m.FundTransactionID,
		FundType:          domain.FundType(m.FundType),
		TransactionType:   domain.FundTransactionType(m.TransactionType),
		Amount:            m.Amount,
		BalanceAfter:      m.BalanceAfter,
		Description:       m.Description,
		SourceType:        m.SourceType,
		SourceID:          m.SourceID,
		ReferenceID:       m.ReferenceID,
		CorrelationID:     m.CorrelationID,
		CreatedByID:       m.CreatedByID,
		CreatedAt:         m.CreatedAt,
	}
}

// ToDomainFundTransactionSlice converts fund_transactions rows to domain values
func ToDomainFundTransactionSlice(ms []models.FundTransaction) []domain.FundTransaction {
	ds := make([]domain.FundTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFundTransaction(m)
	}
	return ds
}
