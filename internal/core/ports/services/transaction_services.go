package services

import (
	"context"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionReaderSvc defines read operations for project transactions
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// TransactionWriterSvc defines the project transaction lifecycle
type TransactionWriterSvc interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// ArchiveTransaction soft-deletes a project and every active expense linked to it as one batch.
	ArchiveTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// RestoreTransaction restores a project and the expenses archived in the same batch.
	RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// RecalculateCapitalCost recomputes and stores the project's capital cost.
	RecalculateCapitalCost(ctx context.Context, transactionID string) (decimal.Decimal, error)
}

// TransactionSvcFacade combines all project transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
